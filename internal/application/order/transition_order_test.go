package order

import (
	"context"
	"testing"

	"github.com/xiebiao/freshmart/internal/domain/batch"
	"github.com/xiebiao/freshmart/internal/domain/order"
	"github.com/xiebiao/freshmart/internal/domain/user"
	"github.com/xiebiao/freshmart/internal/infrastructure/persistence/mysql"
)

// fakeTransitionRepo 内存订单仓储(状态流转测试专用)
// 设计说明:
// readStatus模拟用例在事务外读到的(可能已过期的)状态,
// dbStatus模拟数据库中的真实状态——两者不一致即构造出
// "读取之后、CAS之前被并发流转"的竞态窗口
type fakeTransitionRepo struct {
	stored     *order.Order
	readStatus order.OrderStatus
	dbStatus   order.OrderStatus
	history    []order.StatusChange
}

func (r *fakeTransitionRepo) Create(ctx context.Context, o *order.Order) error { return nil }

func (r *fakeTransitionRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	if r.stored == nil || r.stored.ID != id {
		return nil, order.ErrOrderNotFound
	}
	o := *r.stored
	o.Status = r.readStatus
	return &o, nil
}

func (r *fakeTransitionRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}

func (r *fakeTransitionRepo) UpdateStatus(ctx context.Context, orderID uint, status order.OrderStatus) error {
	r.dbStatus = status
	return nil
}

// UpdateStatusCAS 与MySQL实现同语义:逐个候选匹配真实状态,
// 命中才写入并返回命中的来源状态
func (r *fakeTransitionRepo) UpdateStatusCAS(ctx context.Context, orderID uint, from []order.OrderStatus, to order.OrderStatus) (order.OrderStatus, bool, error) {
	for _, s := range from {
		if r.dbStatus == s {
			r.dbStatus = to
			r.readStatus = to
			return s, true, nil
		}
	}
	return 0, false, nil
}

func (r *fakeTransitionRepo) AppendStatusHistory(ctx context.Context, change *order.StatusChange) error {
	r.history = append(r.history, *change)
	return nil
}

func (r *fakeTransitionRepo) FindStatusHistory(ctx context.Context, orderID uint) ([]order.StatusChange, error) {
	return r.history, nil
}

func (r *fakeTransitionRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return nil, 0, nil
}

// fakeDeallocator 记录回补调用的分配器桩
type fakeDeallocator struct {
	deallocated [][]batch.Allocation
}

func (f *fakeDeallocator) Allocate(ctx context.Context, productID uint, quantity int) ([]batch.Allocation, error) {
	return nil, nil
}

func (f *fakeDeallocator) Deallocate(ctx context.Context, allocations []batch.Allocation) error {
	f.deallocated = append(f.deallocated, allocations)
	return nil
}

// newTransitionFixture 构造一个已分配完成的订单及其用例
func newTransitionFixture(status order.OrderStatus) (*TransitionOrderUseCase, *fakeTransitionRepo, *fakeDeallocator) {
	repo := &fakeTransitionRepo{
		stored: &order.Order{
			ID:     1,
			UserID: 100,
			Lines: []order.OrderLine{
				{ProductID: 1, Quantity: 3, Price: 500, Allocations: []order.LineAllocation{
					{BatchID: 7, QtyTaken: 3},
				}},
			},
		},
		readStatus: status,
		dbStatus:   status,
	}
	dealloc := &fakeDeallocator{}
	uc := NewTransitionOrderUseCase(repo, dealloc, mysql.NewTxManager(nil))
	return uc, repo, dealloc
}

// TestTransitionOrder_AdvanceAuditsPriorStatus 履约推进写入正确的来源状态
func TestTransitionOrder_AdvanceAuditsPriorStatus(t *testing.T) {
	uc, repo, _ := newTransitionFixture(order.OrderStatusPending)

	err := uc.Execute(context.Background(), TransitionOrderRequest{
		OrderID:   1,
		Target:    order.OrderStatusProcessing,
		ActorID:   9,
		ActorRole: user.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("推进失败: %v", err)
	}

	if repo.dbStatus != order.OrderStatusProcessing {
		t.Errorf("期望状态Processing,实际%s", repo.dbStatus)
	}
	if len(repo.history) != 1 {
		t.Fatalf("期望1条审计记录,实际%d条", len(repo.history))
	}
	if repo.history[0].From != order.OrderStatusPending {
		t.Errorf("审计From期望Pending,实际%s", repo.history[0].From)
	}
}

// TestTransitionOrder_CancelAuditsActualPriorStatus 取消审计记录真实来源状态
// 竞态场景:顾客读到Pending后,管理员并发把订单推进到了Processing;
// 取消CAS同时接受两种来源状态,Processing命中——审计的From必须是
// Processing(CAS命中的状态),而不是过期读取到的Pending
func TestTransitionOrder_CancelAuditsActualPriorStatus(t *testing.T) {
	uc, repo, dealloc := newTransitionFixture(order.OrderStatusPending)

	// 读取之后、取消之前,数据库侧被并发推进到Processing
	repo.dbStatus = order.OrderStatusProcessing

	err := uc.Execute(context.Background(), TransitionOrderRequest{
		OrderID:   1,
		Target:    order.OrderStatusCancelled,
		ActorID:   100,
		ActorRole: user.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("取消失败: %v", err)
	}

	if repo.dbStatus != order.OrderStatusCancelled {
		t.Errorf("期望状态Cancelled,实际%s", repo.dbStatus)
	}
	if len(dealloc.deallocated) != 1 {
		t.Fatalf("期望回补1次,实际%d次", len(dealloc.deallocated))
	}
	if len(repo.history) != 1 {
		t.Fatalf("期望1条审计记录,实际%d条", len(repo.history))
	}
	if repo.history[0].From != order.OrderStatusProcessing {
		t.Errorf("审计From期望Processing(CAS命中的状态),实际%s", repo.history[0].From)
	}
}

// TestTransitionOrder_CancelIdempotent 重复取消幂等:不重复回补,不重复审计
func TestTransitionOrder_CancelIdempotent(t *testing.T) {
	uc, repo, dealloc := newTransitionFixture(order.OrderStatusPending)

	req := TransitionOrderRequest{
		OrderID:   1,
		Target:    order.OrderStatusCancelled,
		ActorID:   100,
		ActorRole: user.RoleCustomer,
	}

	if err := uc.Execute(context.Background(), req); err != nil {
		t.Fatalf("首次取消失败: %v", err)
	}
	if err := uc.Execute(context.Background(), req); err != nil {
		t.Fatalf("重复取消应幂等成功: %v", err)
	}

	if len(dealloc.deallocated) != 1 {
		t.Errorf("幂等取消不应重复回补,回补了%d次", len(dealloc.deallocated))
	}
	if len(repo.history) != 1 {
		t.Errorf("幂等取消不应重复审计,写入了%d条", len(repo.history))
	}
}

// TestTransitionOrder_ShippedCannotCancel 已发货订单取消被拒
func TestTransitionOrder_ShippedCannotCancel(t *testing.T) {
	uc, _, dealloc := newTransitionFixture(order.OrderStatusShipped)

	err := uc.Execute(context.Background(), TransitionOrderRequest{
		OrderID:   1,
		Target:    order.OrderStatusCancelled,
		ActorID:   100,
		ActorRole: user.RoleCustomer,
	})
	if err != order.ErrInvalidTransition {
		t.Errorf("期望ErrInvalidTransition,实际%v", err)
	}
	if len(dealloc.deallocated) != 0 {
		t.Errorf("非法取消不应触发回补")
	}
}
