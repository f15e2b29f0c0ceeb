package supplier

import (
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// 供应商领域错误定义
var (
	// ErrSupplierNotFound 供应商不存在
	ErrSupplierNotFound = apperrors.ErrSupplierNotFound

	// ErrSupplierInactive 供应商已停用
	ErrSupplierInactive = apperrors.New(apperrors.ErrCodeBusinessError, "供应商已停用,不可接收新批次")

	// ErrEmptyName 名称不能为空
	ErrEmptyName = apperrors.New(apperrors.ErrCodeInvalidParams, "供应商名称不能为空")
)
