package batch

import (
	"context"
	"testing"
)

// recordingObserver 记录回调的观察者(测试用)
type recordingObserver struct {
	mutations []uint
}

func (o *recordingObserver) OnStockMutated(ctx context.Context, productID uint) {
	o.mutations = append(o.mutations, productID)
}

// TestLedger_ReceiveValidation 测试入库参数校验
func TestLedger_ReceiveValidation(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newMemRepo(), nil)

	// 数量必须>0
	if _, err := ledger.Receive(ctx, 1, 1, 0, daysFromNow(10), 100); err != ErrInvalidQuantity {
		t.Errorf("数量为0: 期望ErrInvalidQuantity, 实际 %v", err)
	}
	if _, err := ledger.Receive(ctx, 1, 1, -3, daysFromNow(10), 100); err != ErrInvalidQuantity {
		t.Errorf("数量为负: 期望ErrInvalidQuantity, 实际 %v", err)
	}

	// 保质期不能早于今天
	if _, err := ledger.Receive(ctx, 1, 1, 5, daysFromNow(-1), 100); err != ErrPastExpiry {
		t.Errorf("过期日期: 期望ErrPastExpiry, 实际 %v", err)
	}

	// 今天到期允许入库(日历日期语义)
	b, err := ledger.Receive(ctx, 1, 1, 5, daysFromNow(0), 100)
	if err != nil {
		t.Fatalf("今天到期应允许入库: %v", err)
	}
	if b.QuantityRemaining != 5 || b.QuantityRemaining != b.QuantityReceived {
		t.Errorf("新批次余量应等于入库数量")
	}
}

// TestLedger_DeleteBatch 测试批次删除规则
// 业务规则:只有从未出库的批次(remaining == received)可删除
func TestLedger_DeleteBatch(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(newMemRepo(), nil)

	// 未触碰的批次可删除
	b1, _ := ledger.Receive(ctx, 1, 1, 5, daysFromNow(10), 100)
	if err := ledger.DeleteBatch(ctx, b1.ID); err != nil {
		t.Errorf("未触碰批次应可删除: %v", err)
	}
	if _, err := ledger.GetBatch(ctx, b1.ID); err != ErrBatchNotFound {
		t.Errorf("删除后应查不到: %v", err)
	}

	// 已出库的批次删除失败(Conflict)
	b2, _ := ledger.Receive(ctx, 1, 1, 5, daysFromNow(10), 100)
	if _, err := ledger.AdjustRemaining(ctx, b2.ID, -1); err != nil {
		t.Fatalf("调整失败: %v", err)
	}
	if err := ledger.DeleteBatch(ctx, b2.ID); err != ErrBatchTouched {
		t.Errorf("期望ErrBatchTouched, 实际 %v", err)
	}

	// 不存在的批次
	if err := ledger.DeleteBatch(ctx, 9999); err != ErrBatchNotFound {
		t.Errorf("期望ErrBatchNotFound, 实际 %v", err)
	}
}

// TestLedger_AdjustNotifiesObserver 测试变更观察者回调
// 契约:每次成功的AdjustRemaining/Receive都同步触发一次回调;失败不触发
func TestLedger_AdjustNotifiesObserver(t *testing.T) {
	ctx := context.Background()
	observer := &recordingObserver{}
	ledger := NewLedger(newMemRepo(), observer)

	b, _ := ledger.Receive(ctx, 42, 1, 10, daysFromNow(10), 100)
	if len(observer.mutations) != 1 {
		t.Fatalf("入库后回调次数 = %d, 期望 1", len(observer.mutations))
	}

	if _, err := ledger.AdjustRemaining(ctx, b.ID, -3); err != nil {
		t.Fatalf("调整失败: %v", err)
	}
	if len(observer.mutations) != 2 || observer.mutations[1] != 42 {
		t.Errorf("调整成功应回调且携带商品ID: %v", observer.mutations)
	}

	// 失败的调整不触发回调
	if _, err := ledger.AdjustRemaining(ctx, b.ID, -100); err == nil {
		t.Fatal("超量扣减应失败")
	}
	if len(observer.mutations) != 2 {
		t.Errorf("失败的调整不应触发回调, 实际 %d 次", len(observer.mutations))
	}
}

// TestLedger_ListByStatus 测试按派生状态查询
func TestLedger_ListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	ledger := NewLedger(repo, nil)

	ledger.Receive(ctx, 1, 1, 5, daysFromNow(10), 100)

	expired := NewBatch(1, 1, 5, daysFromNow(-2), 100)
	repo.seedBatch(expired)

	exhausted := NewBatch(1, 1, 5, daysFromNow(10), 100)
	exhausted.QuantityRemaining = 0
	repo.seedBatch(exhausted)

	for _, tc := range []struct {
		status BatchStatus
		want   int
	}{
		{BatchStatusActive, 1},
		{BatchStatusExpired, 1},
		{BatchStatusExhausted, 1},
	} {
		list, total, err := ledger.ListByStatus(ctx, tc.status, 1, 20)
		if err != nil {
			t.Fatalf("查询%s失败: %v", tc.status, err)
		}
		if len(list) != tc.want || total != int64(tc.want) {
			t.Errorf("状态%s: 数量 = %d, 期望 %d", tc.status, len(list), tc.want)
		}
	}

	// 非法状态参数
	if _, _, err := ledger.ListByStatus(ctx, BatchStatus("bogus"), 1, 20); err != ErrInvalidStatus {
		t.Errorf("期望ErrInvalidStatus, 实际 %v", err)
	}
}
