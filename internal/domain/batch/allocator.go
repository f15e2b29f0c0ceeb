package batch

import (
	"context"
	"sort"
)

// Allocation 一次批次分配记录
// 设计说明:只保存BatchID而非Batch对象——订单行通过ID引用批次,
// 台账是批次对象的唯一属主(避免聚合间的对象嵌套)
type Allocation struct {
	BatchID  uint // 被扣减的批次ID
	QtyTaken int  // 从该批次扣减的数量
}

// Allocator 分配引擎(领域服务)
// 设计说明:
// 1. 按FEFO(先到期先出)策略把请求数量拆分到各可分配批次
// 2. "先计划后提交":先只读遍历算出完整分配计划并校验总量充足,
//    再提交扣减——失败的Allocate调用绝不留下部分扣减
// 3. 提交阶段按BatchID升序逐批扣减,与LockActiveBatches的加锁顺序一致,
//    防止并发多批次分配互相死锁
type Allocator interface {
	// Allocate 为商品分配指定数量
	// 可分配总量不足时返回*InsufficientStockError(携带requested/available),
	// 且不产生任何余量变更
	Allocate(ctx context.Context, productID uint, quantity int) ([]Allocation, error)

	// Deallocate 逆向释放一组分配(取消订单的补偿操作)
	// 本身不做幂等控制——"每订单至多释放一次"由订单状态机的
	// Cancelled流转CAS保证
	Deallocate(ctx context.Context, allocations []Allocation) error
}

// allocator 分配引擎实现
type allocator struct {
	ledger Ledger
}

// NewAllocator 创建分配引擎
func NewAllocator(ledger Ledger) Allocator {
	return &allocator{ledger: ledger}
}

// Allocate 为商品分配指定数量
// 流程:
// 1. 锁定可分配批次(事务内为SELECT FOR UPDATE,按ID升序加锁)
// 2. 按FEFO排序后计算分配计划:每批次取min(remaining, stillNeeded)
// 3. 校验计划总量——不足则直接失败,零变更
// 4. 按BatchID升序提交扣减
func (a *allocator) Allocate(ctx context.Context, productID uint, quantity int) ([]Allocation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 1. 锁定可分配批次
	batches, err := a.ledger.LockActiveBatches(ctx, productID)
	if err != nil {
		return nil, err
	}

	// 2. FEFO排序(加锁顺序是ID序,消耗顺序必须是到期日序)
	SortFEFO(batches)

	// 3. 计算分配计划
	plan := make([]Allocation, 0, len(batches))
	available := 0
	stillNeeded := quantity
	for _, b := range batches {
		available += b.QuantityRemaining
		if stillNeeded > 0 {
			take := b.QuantityRemaining
			if take > stillNeeded {
				take = stillNeeded
			}
			plan = append(plan, Allocation{BatchID: b.ID, QtyTaken: take})
			stillNeeded -= take
		}
	}

	// 4. 总量校验:不足则零变更失败
	if stillNeeded > 0 {
		return nil, NewInsufficientStockError(productID, quantity, available)
	}

	// 5. 提交扣减(BatchID升序,与加锁顺序一致)
	sortByBatchID(plan)
	for _, alloc := range plan {
		if _, err := a.ledger.AdjustRemaining(ctx, alloc.BatchID, -alloc.QtyTaken); err != nil {
			// 行锁已持有时不应该走到这里;事务context下由调用方回滚兜底
			return nil, err
		}
	}

	return plan, nil
}

// Deallocate 逆向释放一组分配
func (a *allocator) Deallocate(ctx context.Context, allocations []Allocation) error {
	// 与Allocate相同的确定性顺序
	reversed := make([]Allocation, len(allocations))
	copy(reversed, allocations)
	sortByBatchID(reversed)

	for _, alloc := range reversed {
		if _, err := a.ledger.AdjustRemaining(ctx, alloc.BatchID, alloc.QtyTaken); err != nil {
			return err
		}
	}
	return nil
}

// sortByBatchID 按批次ID升序排序(确定性提交/加锁顺序)
func sortByBatchID(allocs []Allocation) {
	sort.Slice(allocs, func(i, j int) bool {
		return allocs[i].BatchID < allocs[j].BatchID
	})
}
