package batch

import (
	"context"
	"sync"
	"time"
)

// memRepo 内存版批次仓储(仅测试用)
// 教学要点:
// 1. 用全局互斥锁模拟"每批次串行化"契约:AdjustRemaining在锁内
//    完成读-校验-写,两个并发调整不可能基于同一个过期余量提交
// 2. 所有读操作返回深拷贝,避免测试代码与仓储内部状态产生数据竞争
// 3. 没有事务:分配引擎的多批次提交循环在MySQL下靠调用方事务
//    (SELECT FOR UPDATE+整体回滚)保证全有或全无,这里的锁只覆盖
//    单次AdjustRemaining——跨批次原子性测试用saga补偿或单goroutine
//    场景表达,不能靠memRepo自身拦住提交中途的并发读
type memRepo struct {
	mu      sync.Mutex
	seq     uint
	batches map[uint]*Batch
}

func newMemRepo() *memRepo {
	return &memRepo{batches: make(map[uint]*Batch)}
}

func (r *memRepo) Create(ctx context.Context, b *Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	b.ID = r.seq
	stored := *b
	r.batches[b.ID] = &stored
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id uint) (*Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) ActiveBatches(ctx context.Context, productID uint) ([]*Batch, error) {
	batches, err := r.LockActiveBatches(ctx, productID)
	if err != nil {
		return nil, err
	}
	SortFEFO(batches)
	return batches, nil
}

func (r *memRepo) LockActiveBatches(ctx context.Context, productID uint) ([]*Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	result := make([]*Batch, 0)
	for _, b := range r.batches {
		if b.ProductID == productID && b.IsEligible(now) {
			cp := *b
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memRepo) AdjustRemaining(ctx context.Context, batchID uint, delta int) (*Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[batchID]
	if !ok {
		return nil, ErrBatchNotFound
	}
	if err := b.Adjust(delta); err != nil {
		return nil, err
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[id]
	if !ok {
		return ErrBatchNotFound
	}
	if !b.IsUntouched() {
		return ErrBatchTouched
	}
	delete(r.batches, id)
	return nil
}

func (r *memRepo) ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*Batch, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*Batch, 0)
	for _, b := range r.batches {
		if b.ProductID == productID {
			cp := *b
			result = append(result, &cp)
		}
	}
	SortFEFO(result)
	return result, int64(len(result)), nil
}

func (r *memRepo) ListByStatus(ctx context.Context, status BatchStatus, page, pageSize int) ([]*Batch, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	result := make([]*Batch, 0)
	for _, b := range r.batches {
		if b.Status(now) == status {
			cp := *b
			result = append(result, &cp)
		}
	}
	SortFEFO(result)
	return result, int64(len(result)), nil
}

func (r *memRepo) TotalRemaining(ctx context.Context, productID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	total := 0
	for _, b := range r.batches {
		if b.ProductID == productID && !b.IsExpired(now) {
			total += b.QuantityRemaining
		}
	}
	return total, nil
}

// seedBatch 直接写入一个批次(绕过Receive校验,用于构造过期批次等场景)
func (r *memRepo) seedBatch(b *Batch) *Batch {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	b.ID = r.seq
	stored := *b
	r.batches[b.ID] = &stored
	return b
}
