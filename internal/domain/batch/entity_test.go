package batch

import (
	"testing"
	"time"
)

// 测试辅助:相对今天偏移n天的日期
func daysFromNow(n int) time.Time {
	return time.Now().AddDate(0, 0, n)
}

// TestBatch_DerivedStatus 测试状态派生规则
// 教学要点:expired/exhausted是派生谓词,不存储,expired优先
func TestBatch_DerivedStatus(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name      string
		expiry    time.Time
		remaining int
		want      BatchStatus
	}{
		{"未过期有余量→active", daysFromNow(10), 5, BatchStatusActive},
		{"今天到期仍可用→active", now, 5, BatchStatusActive},
		{"昨天到期→expired", daysFromNow(-1), 5, BatchStatusExpired},
		{"余量为0→exhausted", daysFromNow(10), 0, BatchStatusExhausted},
		{"过期且余量为0→expired优先", daysFromNow(-1), 0, BatchStatusExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Batch{
				QuantityReceived:  10,
				QuantityRemaining: tc.remaining,
				ExpiryDate:        dateOf(tc.expiry),
			}
			if got := b.Status(now); got != tc.want {
				t.Errorf("Status() = %s, 期望 %s", got, tc.want)
			}
			if b.IsEligible(now) != (tc.want == BatchStatusActive) {
				t.Errorf("IsEligible与Status不一致")
			}
		})
	}
}

// TestBatch_CanAdjust 测试余量调整的边界校验
func TestBatch_CanAdjust(t *testing.T) {
	b := &Batch{QuantityReceived: 10, QuantityRemaining: 4}

	// 合法的负向调整
	if err := b.CanAdjust(-4); err != nil {
		t.Errorf("扣减到0应合法: %v", err)
	}

	// 负向调整使余量为负
	if err := b.CanAdjust(-5); err != ErrInsufficientRemaining {
		t.Errorf("期望ErrInsufficientRemaining, 实际 %v", err)
	}

	// 正向调整超过入库数量
	if err := b.CanAdjust(7); err != ErrExceedsReceived {
		t.Errorf("期望ErrExceedsReceived, 实际 %v", err)
	}

	// 合法的正向调整(补偿回滚)
	if err := b.Adjust(6); err != nil {
		t.Errorf("回补到received应合法: %v", err)
	}
	if b.QuantityRemaining != 10 {
		t.Errorf("余量 = %d, 期望 10", b.QuantityRemaining)
	}
}

// TestSortFEFO 测试FEFO排序契约
// 排序规则:到期日升序 → 入库时间升序 → ID升序
func TestSortFEFO(t *testing.T) {
	base := time.Now()
	b1 := &Batch{ID: 3, ExpiryDate: dateOf(daysFromNow(30)), ReceivedAt: base}
	b2 := &Batch{ID: 1, ExpiryDate: dateOf(daysFromNow(10)), ReceivedAt: base}
	// 与b2同日到期,但入库更早→排在b2前面
	b3 := &Batch{ID: 2, ExpiryDate: dateOf(daysFromNow(10)), ReceivedAt: base.Add(-time.Hour)}

	batches := []*Batch{b1, b2, b3}
	SortFEFO(batches)

	wantOrder := []uint{2, 1, 3}
	for i, want := range wantOrder {
		if batches[i].ID != want {
			t.Fatalf("位置%d: ID = %d, 期望 %d", i, batches[i].ID, want)
		}
	}
}

// TestParseBatchStatus 测试状态参数解析
func TestParseBatchStatus(t *testing.T) {
	if _, err := ParseBatchStatus("active"); err != nil {
		t.Errorf("active应为合法状态: %v", err)
	}
	if _, err := ParseBatchStatus("deleted"); err != ErrInvalidStatus {
		t.Errorf("期望ErrInvalidStatus, 实际 %v", err)
	}
}
