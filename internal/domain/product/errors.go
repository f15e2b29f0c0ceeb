package product

import (
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.ErrProductNotFound

	// ErrSKUDuplicate 商品SKU已存在
	ErrSKUDuplicate = apperrors.ErrSKUDuplicate

	// ErrInvalidSKU SKU格式不正确
	ErrInvalidSKU = apperrors.New(apperrors.ErrCodeInvalidParams, "SKU格式不正确")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidThreshold 无效的告警阈值
	ErrInvalidThreshold = apperrors.New(apperrors.ErrCodeInvalidParams, "低库存阈值不能为负数")

	// ErrProductHasStock 商品仍有在库批次,不可删除
	ErrProductHasStock = apperrors.New(apperrors.ErrCodeConflict, "商品仍有未耗尽的库存批次,不可删除")
)
