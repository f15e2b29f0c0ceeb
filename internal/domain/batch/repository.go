package batch

import (
	"context"
)

// Repository 批次仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. AdjustRemaining是唯一的余量写入口,实现必须保证"每批次串行化":
//    两个并发调整不可能基于同一个过期的remaining值同时提交
//    (MySQL实现使用带守卫条件的原子UPDATE,内存实现使用每批次互斥锁)
// 3. 事务通过context传递(见mysql.TxManager)
type Repository interface {
	// Create 创建批次(入库)
	Create(ctx context.Context, b *Batch) error

	// FindByID 根据ID查找批次
	FindByID(ctx context.Context, id uint) (*Batch, error)

	// ActiveBatches 返回商品当前所有可分配批次,按FEFO契约排序
	// (expiry_date升序,received_at升序)——分配引擎依赖此顺序
	ActiveBatches(ctx context.Context, productID uint) ([]*Batch, error)

	// LockActiveBatches 锁定并返回商品的可分配批次
	// 约定:在事务context中调用时执行SELECT FOR UPDATE,
	// 且按批次ID升序加锁(防止多批次分配之间互相死锁);
	// 返回顺序不保证FEFO,调用方需自行SortFEFO
	LockActiveBatches(ctx context.Context, productID uint) ([]*Batch, error)

	// AdjustRemaining 原子调整余量(delta可正可负)
	// 错误约定:
	// - 批次不存在 → ErrBatchNotFound
	// - 负delta使余量为负 → ErrInsufficientRemaining
	// - 正delta超过入库数量 → ErrExceedsReceived
	AdjustRemaining(ctx context.Context, batchID uint, delta int) (*Batch, error)

	// Delete 删除批次
	// 错误约定:批次已被消耗(remaining != received) → ErrBatchTouched
	Delete(ctx context.Context, id uint) error

	// ListByProduct 分页查询商品的全部批次(按expiry_date升序)
	ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*Batch, int64, error)

	// ListByStatus 按派生状态分页查询批次
	// 状态在查询时由expiry_date/quantity_remaining计算,绝不读取缓存字段
	ListByStatus(ctx context.Context, status BatchStatus, page, pageSize int) ([]*Batch, int64, error)

	// TotalRemaining 商品当前可分配总量(可分配批次余量之和)
	// 这是商品"库存总量"的唯一权威来源
	TotalRemaining(ctx context.Context, productID uint) (int, error)
}
