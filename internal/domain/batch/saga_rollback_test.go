package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xiebiao/freshmart/pkg/saga"
)

// orderLine 多行下单的测试输入
type orderLine struct {
	productID uint
	quantity  int
}

// buildLineSaga 复刻创建订单用例的编排:每个订单行一个saga步骤,
// 正向动作是批次分配,补偿动作是逐批回补
func buildLineSaga(alloc Allocator, lines []orderLine) *saga.Saga {
	s := saga.NewSaga(5 * time.Second)
	for _, l := range lines {
		l := l
		var allocs []Allocation
		s.AddStep("分配商品库存",
			func(ctx context.Context) error {
				var err error
				allocs, err = alloc.Allocate(ctx, l.productID, l.quantity)
				return err
			},
			func(ctx context.Context) error {
				return alloc.Deallocate(ctx, allocs)
			},
		)
	}
	return s
}

// TestOrderSagaRollbackRestoresStock 某行库存不足时整单回滚
// 场景:第一行分配成功(跨两个批次),第二行库存不足 → saga失败,
// 补偿必须把第一行已扣减的批次完整恢复,不留任何残余扣减
func TestOrderSagaRollbackRestoresStock(t *testing.T) {
	ctx := context.Background()
	_, ledger, alloc := newTestAllocator()

	// 商品1两个批次共12件,商品2只有3件
	b1, err := ledger.Receive(ctx, 1, 1, 5, daysFromNow(2), 100)
	if err != nil {
		t.Fatalf("入库B1失败: %v", err)
	}
	b2, err := ledger.Receive(ctx, 1, 1, 7, daysFromNow(9), 100)
	if err != nil {
		t.Fatalf("入库B2失败: %v", err)
	}
	if _, err := ledger.Receive(ctx, 2, 1, 3, daysFromNow(5), 100); err != nil {
		t.Fatalf("入库商品2批次失败: %v", err)
	}

	// 第一行8件充足,第二行10件短缺
	s := buildLineSaga(alloc, []orderLine{{1, 8}, {2, 10}})

	err = s.Execute(ctx)
	if err == nil {
		t.Fatal("第二行库存不足,saga应整体失败")
	}
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("期望*InsufficientStockError, 实际 %v", err)
	}
	if insufficient.ProductID != 2 {
		t.Errorf("短缺商品 = %d, 期望 2", insufficient.ProductID)
	}

	// 第一行的扣减必须已被补偿:逐批核对余量回到入库值
	got1, _ := ledger.GetBatch(ctx, b1.ID)
	got2, _ := ledger.GetBatch(ctx, b2.ID)
	if got1.QuantityRemaining != 5 || got2.QuantityRemaining != 7 {
		t.Errorf("补偿后余量 = (%d,%d), 期望 (5,7)", got1.QuantityRemaining, got2.QuantityRemaining)
	}

	total1, _ := ledger.TotalRemaining(ctx, 1)
	if total1 != 12 {
		t.Errorf("商品1可分配总量 = %d, 期望 12", total1)
	}
	total2, _ := ledger.TotalRemaining(ctx, 2)
	if total2 != 3 {
		t.Errorf("商品2可分配总量 = %d, 期望 3", total2)
	}
}

// TestOrderSagaAllLinesSucceed 全部行成功时不触发补偿
func TestOrderSagaAllLinesSucceed(t *testing.T) {
	ctx := context.Background()
	_, ledger, alloc := newTestAllocator()

	if _, err := ledger.Receive(ctx, 1, 1, 10, daysFromNow(4), 100); err != nil {
		t.Fatalf("入库失败: %v", err)
	}
	if _, err := ledger.Receive(ctx, 2, 1, 6, daysFromNow(6), 100); err != nil {
		t.Fatalf("入库失败: %v", err)
	}

	s := buildLineSaga(alloc, []orderLine{{1, 4}, {2, 6}})
	if err := s.Execute(ctx); err != nil {
		t.Fatalf("saga执行失败: %v", err)
	}

	total1, _ := ledger.TotalRemaining(ctx, 1)
	total2, _ := ledger.TotalRemaining(ctx, 2)
	if total1 != 6 || total2 != 0 {
		t.Errorf("扣减后总量 = (%d,%d), 期望 (6,0)", total1, total2)
	}
}

// TestCancelCompensationRestoresBatches 取消补偿逐批精确回补
// 分配跨两个批次,取消时Deallocate必须把每个批次恢复到扣减前,
// 而不是把总量笼统加回某一个批次
func TestCancelCompensationRestoresBatches(t *testing.T) {
	ctx := context.Background()
	_, ledger, alloc := newTestAllocator()

	b1, err := ledger.Receive(ctx, 1, 1, 5, daysFromNow(2), 100)
	if err != nil {
		t.Fatalf("入库B1失败: %v", err)
	}
	b2, err := ledger.Receive(ctx, 1, 1, 7, daysFromNow(9), 100)
	if err != nil {
		t.Fatalf("入库B2失败: %v", err)
	}

	// FEFO:先吃空B1(5件),再从B2出3件
	allocs, err := alloc.Allocate(ctx, 1, 8)
	if err != nil {
		t.Fatalf("分配失败: %v", err)
	}

	got1, _ := ledger.GetBatch(ctx, b1.ID)
	got2, _ := ledger.GetBatch(ctx, b2.ID)
	if got1.QuantityRemaining != 0 || got2.QuantityRemaining != 4 {
		t.Fatalf("扣减后余量 = (%d,%d), 期望 (0,4)", got1.QuantityRemaining, got2.QuantityRemaining)
	}

	if err := alloc.Deallocate(ctx, allocs); err != nil {
		t.Fatalf("回补失败: %v", err)
	}

	got1, _ = ledger.GetBatch(ctx, b1.ID)
	got2, _ = ledger.GetBatch(ctx, b2.ID)
	if got1.QuantityRemaining != 5 || got2.QuantityRemaining != 7 {
		t.Errorf("回补后余量 = (%d,%d), 期望 (5,7)", got1.QuantityRemaining, got2.QuantityRemaining)
	}
}
