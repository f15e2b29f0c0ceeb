package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/freshmart/internal/domain/order"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// orderRepository 订单仓储实现
// 设计说明:
// 1. 实现domain/order/repository.go定义的接口
// 2. 订单头、订单行、分配明细、首条审计记录在同一事务写入
// 3. 状态的竞争路径走CAS更新(WHERE status IN ...),不走读改写
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单(级联创建订单行、分配明细与首条审计记录)
// 教学要点:
// 1. GORM的关联写入:OrderModel.Lines与OrderLineModel.Allocations
//    标注了foreignKey,Create一次落三张表
// 2. 审计记录不在关联里(独立表),单独Insert
// 3. 调用方保证外层事务(saga最后一步在TxManager事务内执行)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填数据库生成的ID(订单、订单行、分配明细逐级回填)
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range model.Lines {
		o.Lines[i].ID = model.Lines[i].ID
		o.Lines[i].OrderID = model.ID
		for j := range model.Lines[i].Allocations {
			o.Lines[i].Allocations[j].ID = model.Lines[i].Allocations[j].ID
			o.Lines[i].Allocations[j].LineID = model.Lines[i].ID
		}
	}

	// 写入创建审计记录(StatusHistory[0]由NewOrder工厂写入)
	for i := range o.StatusHistory {
		change := &o.StatusHistory[i]
		change.OrderID = model.ID
		if err := r.AppendStatusHistory(ctx, change); err != nil {
			return err
		}
	}

	return nil
}

// FindByID 根据ID查找订单(预加载订单行与分配明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Lines.Allocations").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Lines.Allocations").
		Where("order_no = ?", orderNo).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

// UpdateStatus 更新订单状态(非竞争路径)
func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uint, status order.OrderStatus) error {
	db := r.getDB(ctx)
	result := db.Model(&OrderModel{}).
		Where("id = ?", orderID).
		Update("status", int(status))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// UpdateStatusCAS 条件状态更新(Compare-And-Swap)
// 教学要点:取消与发货并发竞争的数据库层裁决
//
// 逐个候选状态执行单状态CAS:
//
//	UPDATE orders SET status = ? WHERE id = ? AND status = ?
//
// RowsAffected=1 → 本事务赢得竞争,且确知订单的真实来源状态
// (from含多个候选时,IN条件的整体更新无法区分命中了哪一个,
// 审计记录的From就会错);候选最多两个,多出的UPDATE开销可忽略
// 全部落空 → 状态已被并发修改,调用方重读订单决定幂等或冲突
func (r *orderRepository) UpdateStatusCAS(ctx context.Context, orderID uint, from []order.OrderStatus, to order.OrderStatus) (order.OrderStatus, bool, error) {
	db := r.getDB(ctx)
	for _, s := range from {
		result := db.Model(&OrderModel{}).
			Where("id = ? AND status = ?", orderID, int(s)).
			Update("status", int(to))

		if result.Error != nil {
			return 0, false, apperrors.Wrap(result.Error, "更新订单状态失败")
		}
		if result.RowsAffected > 0 {
			return s, true, nil
		}
	}
	return 0, false, nil
}

// AppendStatusHistory 追加一条状态流转审计记录
func (r *orderRepository) AppendStatusHistory(ctx context.Context, change *order.StatusChange) error {
	model := &StatusHistoryModel{
		OrderID:   change.OrderID,
		FromState: int(change.From),
		ToState:   int(change.To),
		ActorID:   change.ActorID,
		CreatedAt: change.At,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入状态审计记录失败")
	}
	change.ID = model.ID
	return nil
}

// FindStatusHistory 查询订单的状态流转历史(按时间升序)
func (r *orderRepository) FindStatusHistory(ctx context.Context, orderID uint) ([]order.StatusChange, error) {
	var models []StatusHistoryModel
	db := r.getDB(ctx)
	err := db.
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询状态历史失败")
	}

	changes := make([]order.StatusChange, len(models))
	for i, m := range models {
		changes[i] = order.StatusChange{
			ID:      m.ID,
			OrderID: m.OrderID,
			From:    order.OrderStatus(m.FromState),
			To:      order.OrderStatus(m.ToState),
			ActorID: m.ActorID,
			At:      m.CreatedAt,
		}
	}
	return changes, nil
}

// ListByUserID 查询用户的订单列表(分页,最新在前)
// 列表场景不预加载分配明细,减少JOIN开销;详情页再按ID回查
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&OrderModel{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	var models []OrderModel
	offset := (page - 1) * pageSize
	err := query.
		Preload("Lines").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, len(o.Lines))
	for i, l := range o.Lines {
		allocs := make([]AllocationModel, len(l.Allocations))
		for j, a := range l.Allocations {
			allocs[j] = AllocationModel{
				BatchID:  a.BatchID,
				QtyTaken: a.QtyTaken,
			}
		}
		lines[i] = OrderLineModel{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Allocations: allocs,
		}
	}

	return &OrderModel{
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Total:   o.Total,
		Status:  int(o.Status),
		Lines:   lines,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	lines := make([]order.OrderLine, len(model.Lines))
	for i, lm := range model.Lines {
		allocs := make([]order.LineAllocation, len(lm.Allocations))
		for j, am := range lm.Allocations {
			allocs[j] = order.LineAllocation{
				ID:       am.ID,
				LineID:   am.LineID,
				BatchID:  am.BatchID,
				QtyTaken: am.QtyTaken,
			}
		}
		lines[i] = order.OrderLine{
			ID:          lm.ID,
			OrderID:     lm.OrderID,
			ProductID:   lm.ProductID,
			Quantity:    lm.Quantity,
			Price:       lm.Price,
			Allocations: allocs,
		}
	}

	return &order.Order{
		ID:        model.ID,
		OrderNo:   model.OrderNo,
		UserID:    model.UserID,
		Total:     model.Total,
		Status:    order.OrderStatus(model.Status),
		Lines:     lines,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
