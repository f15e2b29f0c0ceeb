package batch

import (
	"fmt"

	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// 批次台账领域错误定义
var (
	// ErrBatchNotFound 批次不存在
	ErrBatchNotFound = apperrors.New(apperrors.ErrCodeBatchNotFound, "库存批次不存在")

	// ErrInvalidQuantity 入库数量必须大于0
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "入库数量必须大于0")

	// ErrPastExpiry 保质期不能早于今天
	ErrPastExpiry = apperrors.New(apperrors.ErrCodeInvalidParams, "保质期不能早于今天")

	// ErrInvalidStatus 非法的批次状态参数
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidBatchStatus, "批次状态必须为active/expired/exhausted之一")

	// ErrInsufficientRemaining 余量不足(负向调整会使余量为负)
	ErrInsufficientRemaining = apperrors.New(apperrors.ErrCodeInsufficientStock, "批次余量不足")

	// ErrExceedsReceived 正向调整超过入库数量
	ErrExceedsReceived = apperrors.New(apperrors.ErrCodeInvalidParams, "调整后余量不能超过入库数量")

	// ErrBatchTouched 批次已被消耗,不允许删除
	ErrBatchTouched = apperrors.New(apperrors.ErrCodeConflict, "批次已发生出库,不允许删除")

	// ErrAdjustConflict 并发调整重试超限
	ErrAdjustConflict = apperrors.New(apperrors.ErrCodeConflict, "库存调整冲突,请稍后重试")
)

// InsufficientStockError 商品级库存不足错误
// 设计说明:
// 1. 携带requested/available明细,供订单创建失败时向调用方透出
// 2. Unwrap返回预定义的ErrInsufficientStock,保证errors.Is判断可用
type InsufficientStockError struct {
	ProductID uint // 商品ID
	Requested int  // 请求数量
	Available int  // 当前可分配总量
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("商品[%d]库存不足: 需要%d, 可用%d", e.ProductID, e.Requested, e.Available)
}

// Unwrap 支持errors.Is(err, ErrInsufficientRemaining)式的类型判断
func (e *InsufficientStockError) Unwrap() error {
	return apperrors.ErrInsufficientStock
}

// NewInsufficientStockError 创建库存不足错误
func NewInsufficientStockError(productID uint, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}
