package batch

import (
	"context"
	"time"

	"github.com/xiebiao/freshmart/internal/domain/batch"
)

// BatchDTO 批次DTO
type BatchDTO struct {
	ID                uint   `json:"id"`
	ProductID         uint   `json:"product_id"`
	SupplierID        uint   `json:"supplier_id"`
	QuantityReceived  int    `json:"quantity_received"`
	QuantityRemaining int    `json:"quantity_remaining"`
	ExpiryDate        string `json:"expiry_date"`
	Status            string `json:"status"` // 派生状态(查询时计算)
	CostPrice         int64  `json:"cost_price"`
	ReceivedAt        string `json:"received_at"`
}

// toBatchDTO 实体转DTO
func toBatchDTO(b *batch.Batch) *BatchDTO {
	return &BatchDTO{
		ID:                b.ID,
		ProductID:         b.ProductID,
		SupplierID:        b.SupplierID,
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		ExpiryDate:        b.ExpiryDate.Format("2006-01-02"),
		Status:            string(b.Status(time.Now())),
		CostPrice:         b.CostPrice,
		ReceivedAt:        b.ReceivedAt.Format("2006-01-02 15:04:05"),
	}
}

// BatchListResponse 批次列表响应DTO
type BatchListResponse struct {
	List     []*BatchDTO `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// normalizePage 分页参数默认值与上限
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// GetBatchUseCase 批次详情查询用例
type GetBatchUseCase struct {
	ledger batch.Ledger
}

// NewGetBatchUseCase 创建批次详情查询用例
func NewGetBatchUseCase(ledger batch.Ledger) *GetBatchUseCase {
	return &GetBatchUseCase{ledger: ledger}
}

// Execute 查询批次详情
func (uc *GetBatchUseCase) Execute(ctx context.Context, id uint) (*BatchDTO, error) {
	b, err := uc.ledger.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBatchDTO(b), nil
}

// ListBatchesUseCase 批次列表查询用例
// 支持按商品查询(FEFO顺序)与按派生状态过滤
type ListBatchesUseCase struct {
	ledger batch.Ledger
}

// NewListBatchesUseCase 创建批次列表查询用例
func NewListBatchesUseCase(ledger batch.Ledger) *ListBatchesUseCase {
	return &ListBatchesUseCase{ledger: ledger}
}

// ListByProduct 查询某商品的批次(FEFO顺序)
func (uc *ListBatchesUseCase) ListByProduct(ctx context.Context, productID uint, page, pageSize int) (*BatchListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)
	batches, total, err := uc.ledger.ListByProduct(ctx, productID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return buildListResponse(batches, total, page, pageSize), nil
}

// ListByStatus 按派生状态查询批次
// 状态是查询时派生的:同一批次昨天是active,过了保质期今天就是expired,
// 数据库不存状态列,不需要定时任务刷状态
func (uc *ListBatchesUseCase) ListByStatus(ctx context.Context, status string, page, pageSize int) (*BatchListResponse, error) {
	parsed, err := batch.ParseBatchStatus(status)
	if err != nil {
		return nil, err
	}
	page, pageSize = normalizePage(page, pageSize)
	batches, total, err := uc.ledger.ListByStatus(ctx, parsed, page, pageSize)
	if err != nil {
		return nil, err
	}
	return buildListResponse(batches, total, page, pageSize), nil
}

func buildListResponse(batches []*batch.Batch, total int64, page, pageSize int) *BatchListResponse {
	list := make([]*BatchDTO, len(batches))
	for i, b := range batches {
		list[i] = toBatchDTO(b)
	}
	return &BatchListResponse{List: list, Total: total, Page: page, PageSize: pageSize}
}

// AdjustBatchUseCase 批次余量人工调整用例
// 场景:盘点差异、破损报废(负向),错录修正(正向)
type AdjustBatchUseCase struct {
	ledger batch.Ledger
}

// NewAdjustBatchUseCase 创建批次调整用例
func NewAdjustBatchUseCase(ledger batch.Ledger) *AdjustBatchUseCase {
	return &AdjustBatchUseCase{ledger: ledger}
}

// Execute 调整批次余量
// 边界校验在台账内:调整后余量必须在[0, 入库数量]区间
func (uc *AdjustBatchUseCase) Execute(ctx context.Context, batchID uint, delta int) (*BatchDTO, error) {
	b, err := uc.ledger.AdjustRemaining(ctx, batchID, delta)
	if err != nil {
		return nil, err
	}
	return toBatchDTO(b), nil
}

// DeleteBatchUseCase 批次删除用例
// 只有从未出库的批次(余量==入库量)可删除,用于修正错误入库
type DeleteBatchUseCase struct {
	ledger batch.Ledger
}

// NewDeleteBatchUseCase 创建批次删除用例
func NewDeleteBatchUseCase(ledger batch.Ledger) *DeleteBatchUseCase {
	return &DeleteBatchUseCase{ledger: ledger}
}

// Execute 删除批次
func (uc *DeleteBatchUseCase) Execute(ctx context.Context, batchID uint) error {
	return uc.ledger.DeleteBatch(ctx, batchID)
}
