package cart

import (
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrCartEmpty 购物车为空(下单时)
	ErrCartEmpty = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车为空")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrLineNotFound 购物车中没有该商品
	ErrLineNotFound = apperrors.New(apperrors.ErrCodeNotFound, "购物车中没有该商品")
)
