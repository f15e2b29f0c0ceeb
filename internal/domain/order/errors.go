package order

import (
	"fmt"

	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// 订单领域错误定义
var (
	ErrOrderNotFound      = apperrors.ErrOrderNotFound
	ErrInvalidTransition  = apperrors.ErrInvalidTransition
	ErrInvalidStatusValue = apperrors.New(apperrors.ErrCodeInvalidParams, "非法的订单状态值")
	ErrEmptyOrder         = apperrors.New(apperrors.ErrCodeInvalidParams, "订单至少包含一个订单行")
	ErrInvalidQuantity    = apperrors.New(apperrors.ErrCodeInvalidParams, "订单行数量必须大于0")
	ErrConcurrentUpdate   = apperrors.ErrConflict
)

// CreationFailedError 订单创建失败(库存分配阶段)
// 设计说明:
// 1. 包装第一个导致失败的库存不足错误,保留完整的requested/available明细
// 2. Unwrap链路:CreationFailedError → InsufficientStockError → ErrInsufficientStock
//    调用方既可errors.As取明细,也可按业务码统一处理
type CreationFailedError struct {
	ProductID uint  // 首个分配失败的商品ID
	Cause     error // 底层库存不足错误
}

func (e *CreationFailedError) Error() string {
	return fmt.Sprintf("订单创建失败: 商品%d库存不足: %v", e.ProductID, e.Cause)
}

func (e *CreationFailedError) Unwrap() error {
	return e.Cause
}

// NewCreationFailedError 创建订单创建失败错误
func NewCreationFailedError(productID uint, cause error) *CreationFailedError {
	return &CreationFailedError{ProductID: productID, Cause: cause}
}
