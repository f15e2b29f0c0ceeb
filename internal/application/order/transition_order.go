package order

import (
	"context"

	"github.com/xiebiao/freshmart/internal/domain/batch"
	"github.com/xiebiao/freshmart/internal/domain/order"
	"github.com/xiebiao/freshmart/internal/domain/user"
	"github.com/xiebiao/freshmart/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// TransitionOrderUseCase 订单状态流转用例
// 覆盖履约推进(待处理→处理中→已发货→已送达)与取消(含库存回补)
type TransitionOrderUseCase struct {
	orderRepo order.Repository
	allocator batch.Allocator
	txManager *mysql.TxManager
}

// NewTransitionOrderUseCase 创建状态流转用例
func NewTransitionOrderUseCase(
	orderRepo order.Repository,
	allocator batch.Allocator,
	txManager *mysql.TxManager,
) *TransitionOrderUseCase {
	return &TransitionOrderUseCase{
		orderRepo: orderRepo,
		allocator: allocator,
		txManager: txManager,
	}
}

// TransitionOrderRequest 状态流转请求DTO
type TransitionOrderRequest struct {
	OrderID   uint
	Target    order.OrderStatus
	ActorID   uint      // 操作者用户ID
	ActorRole user.Role // 操作者角色
}

// Execute 执行状态流转
// 教学重点:取消与发货的并发竞争
//
// 场景:顾客点取消的同时,仓库在点发货
// 两个操作都先读到Processing,都认为自己合法——若不做并发控制,
// 订单可能既发了货又回补了库存
//
// 解法:数据库CAS(UPDATE ... WHERE id=? AND status IN (...))
// 只有条件更新成功的一方继续执行后续动作,失败方重读状态:
// - 发现已到达目标状态 → 幂等成功
// - 否则 → 返回冲突/非法流转
func (uc *TransitionOrderUseCase) Execute(ctx context.Context, req TransitionOrderRequest) error {
	if !req.Target.IsValid() {
		return order.ErrInvalidStatusValue
	}

	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return err
	}

	// 权限:取消允许订单所有者或管理员;履约流转仅管理员
	if err := uc.authorize(o, req); err != nil {
		return err
	}

	// 幂等重入:已处于目标状态直接成功
	if o.Status == req.Target {
		return nil
	}

	// 本地先校验流转表,非法请求不必走数据库
	if !o.CanTransitionTo(req.Target) {
		return order.ErrInvalidTransition
	}

	if req.Target == order.OrderStatusCancelled {
		return uc.cancel(ctx, o, req.ActorID)
	}
	return uc.advance(ctx, o, req.Target, req.ActorID)
}

// authorize 权限校验
func (uc *TransitionOrderUseCase) authorize(o *order.Order, req TransitionOrderRequest) error {
	if req.ActorRole == user.RoleAdmin {
		return nil
	}
	if req.Target == order.OrderStatusCancelled && o.IsOwnedBy(req.ActorID) {
		return nil
	}
	return apperrors.ErrForbidden
}

// advance 履约推进(非取消流转)
// CAS条件:当前状态必须仍是读到的状态
func (uc *TransitionOrderUseCase) advance(ctx context.Context, o *order.Order, target order.OrderStatus, actorID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		prior, updated, err := uc.orderRepo.UpdateStatusCAS(txCtx, o.ID, []order.OrderStatus{o.Status}, target)
		if err != nil {
			return err
		}
		if !updated {
			return uc.resolveCASFailure(txCtx, o.ID, target)
		}
		// From取CAS命中的状态,不取事务外的读取结果
		return uc.orderRepo.AppendStatusHistory(txCtx, &order.StatusChange{
			OrderID: o.ID,
			From:    prior,
			To:      target,
			ActorID: actorID,
		})
	})
}

// cancel 取消订单(含补偿性库存回补)
// 教学要点:
// 1. CAS胜出才执行回补——保证"每订单至多回补一次"
// 2. 状态更新与批次回补在同一事务:任一失败整体回滚,
//    绝不出现"已取消但库存未回补"或反之
// 3. 取消CAS同时接受Pending和Processing:审计的From必须用CAS
//    命中的状态——事务外读到Pending后订单可能已被推进到Processing
func (uc *TransitionOrderUseCase) cancel(ctx context.Context, o *order.Order, actorID uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		prior, updated, err := uc.orderRepo.UpdateStatusCAS(txCtx, o.ID, order.CancellableStatuses(), order.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !updated {
			// 并发方抢先流转(可能已发货,也可能已被取消)
			return uc.resolveCASFailure(txCtx, o.ID, order.OrderStatusCancelled)
		}

		// 逐批回补本订单占用的库存
		if allocs := collectAllocations(o); len(allocs) > 0 {
			if err := uc.allocator.Deallocate(txCtx, allocs); err != nil {
				return err
			}
		}

		return uc.orderRepo.AppendStatusHistory(txCtx, &order.StatusChange{
			OrderID: o.ID,
			From:    prior,
			To:      order.OrderStatusCancelled,
			ActorID: actorID,
		})
	})
}

// resolveCASFailure CAS失败后的裁决:重读状态区分幂等与冲突
func (uc *TransitionOrderUseCase) resolveCASFailure(ctx context.Context, orderID uint, target order.OrderStatus) error {
	current, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if current.Status == target {
		// 并发的同目标请求已完成,幂等成功
		return nil
	}
	if current.CanTransitionTo(target) {
		// 理论上CAS失败后状态仍允许流转只剩竞态窗口,按冲突让调用方重试
		return apperrors.ErrConflict
	}
	return order.ErrInvalidTransition
}

// collectAllocations 汇总订单全部批次分配(用于取消回补)
func collectAllocations(o *order.Order) []batch.Allocation {
	var allocs []batch.Allocation
	for _, line := range o.Lines {
		for _, a := range line.Allocations {
			allocs = append(allocs, batch.Allocation{BatchID: a.BatchID, QtyTaken: a.QtyTaken})
		}
	}
	return allocs
}
