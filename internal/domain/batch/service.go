package batch

import (
	"context"
	"time"
)

// MutationObserver 台账变更观察者
// 设计说明:
// 1. 每次AdjustRemaining成功后同步回调(低库存监控器实现此接口)
// 2. 观察者自身负责异步化与超时控制,台账不等待外部通知
// 3. 观察者返回错误不影响台账调用方——库存正确性绝不依赖通知送达
type MutationObserver interface {
	// OnStockMutated 商品库存发生变更
	OnStockMutated(ctx context.Context, productID uint)
}

// Ledger 批次台账领域服务
// 设计说明:
// 1. 台账是批次对象的唯一属主,所有余量变更都经过它的类型化操作
// 2. 分配引擎、订单状态机只依赖本接口,不直接访问Repository
type Ledger interface {
	// Receive 入库创建批次
	// 业务规则:数量必须>0;保质期不能早于今天(日历日期比较)
	Receive(ctx context.Context, productID, supplierID uint, quantity int, expiryDate time.Time, costPrice int64) (*Batch, error)

	// GetBatch 查询单个批次
	GetBatch(ctx context.Context, id uint) (*Batch, error)

	// ActiveBatches 商品的可分配批次(FEFO顺序)
	ActiveBatches(ctx context.Context, productID uint) ([]*Batch, error)

	// LockActiveBatches 锁定商品的可分配批次(事务内使用)
	LockActiveBatches(ctx context.Context, productID uint) ([]*Batch, error)

	// AdjustRemaining 调整批次余量,成功后同步触发变更观察者
	AdjustRemaining(ctx context.Context, batchID uint, delta int) (*Batch, error)

	// DeleteBatch 删除未被消耗的批次(已出库批次返回Conflict)
	DeleteBatch(ctx context.Context, id uint) error

	// ListByProduct 分页查询商品批次
	ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*Batch, int64, error)

	// ListByStatus 按派生状态分页查询
	ListByStatus(ctx context.Context, status BatchStatus, page, pageSize int) ([]*Batch, int64, error)

	// TotalRemaining 商品可分配总量
	TotalRemaining(ctx context.Context, productID uint) (int, error)
}

// ledger 台账服务实现
type ledger struct {
	repo     Repository
	observer MutationObserver // 可为nil(测试场景)
}

// NewLedger 创建批次台账服务
func NewLedger(repo Repository, observer MutationObserver) Ledger {
	return &ledger{repo: repo, observer: observer}
}

// Receive 入库创建批次
func (l *ledger) Receive(ctx context.Context, productID, supplierID uint, quantity int, expiryDate time.Time, costPrice int64) (*Batch, error) {
	// 1. 数量校验
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 2. 保质期校验(日历日期语义:今天到期的批次允许入库)
	if dateOf(expiryDate).Before(dateOf(time.Now())) {
		return nil, ErrPastExpiry
	}

	// 3. 创建实体并持久化
	b := NewBatch(productID, supplierID, quantity, expiryDate, costPrice)
	if err := l.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// 4. 入库也是一次库存变更(可能使库存回到阈值之上,清除告警锁存)
	l.notify(ctx, b.ProductID)

	return b, nil
}

// GetBatch 查询单个批次
func (l *ledger) GetBatch(ctx context.Context, id uint) (*Batch, error) {
	return l.repo.FindByID(ctx, id)
}

// ActiveBatches 商品的可分配批次(FEFO顺序)
func (l *ledger) ActiveBatches(ctx context.Context, productID uint) ([]*Batch, error) {
	return l.repo.ActiveBatches(ctx, productID)
}

// LockActiveBatches 锁定商品的可分配批次
func (l *ledger) LockActiveBatches(ctx context.Context, productID uint) ([]*Batch, error) {
	return l.repo.LockActiveBatches(ctx, productID)
}

// AdjustRemaining 调整批次余量
// 流程:原子更新 → 成功后同步通知观察者(低库存监控)
func (l *ledger) AdjustRemaining(ctx context.Context, batchID uint, delta int) (*Batch, error) {
	b, err := l.repo.AdjustRemaining(ctx, batchID, delta)
	if err != nil {
		return nil, err
	}

	// 变更成功后的最后一步:通知观察者
	// 注意:观察者不持有任何台账锁,通知失败不回传给调用方
	l.notify(ctx, b.ProductID)

	return b, nil
}

// DeleteBatch 删除批次
func (l *ledger) DeleteBatch(ctx context.Context, id uint) error {
	return l.repo.Delete(ctx, id)
}

// ListByProduct 分页查询商品批次
func (l *ledger) ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*Batch, int64, error) {
	return l.repo.ListByProduct(ctx, productID, page, pageSize)
}

// ListByStatus 按派生状态分页查询
func (l *ledger) ListByStatus(ctx context.Context, status BatchStatus, page, pageSize int) ([]*Batch, int64, error) {
	if !status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}
	return l.repo.ListByStatus(ctx, status, page, pageSize)
}

// TotalRemaining 商品可分配总量
func (l *ledger) TotalRemaining(ctx context.Context, productID uint) (int, error) {
	return l.repo.TotalRemaining(ctx, productID)
}

// notify 同步触发变更观察者
func (l *ledger) notify(ctx context.Context, productID uint) {
	if l.observer != nil {
		l.observer.OnStockMutated(ctx, productID)
	}
}
