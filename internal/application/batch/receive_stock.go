package batch

import (
	"context"
	"time"

	"github.com/xiebiao/freshmart/internal/domain/batch"
	"github.com/xiebiao/freshmart/internal/domain/product"
	"github.com/xiebiao/freshmart/internal/domain/supplier"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
	"github.com/xiebiao/freshmart/pkg/metrics"
)

// ReceiveStockUseCase 入库用例
// 收货创建新批次:商品必须存在,供应商必须存在且启用
type ReceiveStockUseCase struct {
	ledger       batch.Ledger
	productRepo  product.Repository
	supplierRepo supplier.Repository
}

// NewReceiveStockUseCase 创建入库用例
func NewReceiveStockUseCase(
	ledger batch.Ledger,
	productRepo product.Repository,
	supplierRepo supplier.Repository,
) *ReceiveStockUseCase {
	return &ReceiveStockUseCase{
		ledger:       ledger,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
	}
}

// ReceiveStockRequest 入库请求DTO
type ReceiveStockRequest struct {
	ProductID  uint
	SupplierID uint
	Quantity   int
	ExpiryDate string // 保质期(日历日期, 2006-01-02)
	CostPrice  int64  // 进货单价(分)
}

// Execute 执行入库
func (uc *ReceiveStockUseCase) Execute(ctx context.Context, req ReceiveStockRequest) (*BatchDTO, error) {
	// 1. 保质期是日历日期,不带时分秒
	expiry, err := time.ParseInLocation("2006-01-02", req.ExpiryDate, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "保质期格式应为YYYY-MM-DD")
	}

	// 2. 商品必须存在
	if _, err := uc.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	// 3. 供应商必须存在且启用
	s, err := uc.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if !s.Active {
		return nil, supplier.ErrSupplierInactive
	}

	// 4. 台账创建批次(数量/保质期校验在领域服务内)
	b, err := uc.ledger.Receive(ctx, req.ProductID, req.SupplierID, req.Quantity, expiry, req.CostPrice)
	if err != nil {
		return nil, err
	}

	if metrics.BatchesReceivedTotal != nil {
		metrics.BatchesReceivedTotal.Inc()
	}

	return toBatchDTO(b), nil
}
