package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单行、分配明细与首条审计记录)
	// 教学要点:订单、明细和审计必须在同一事务中创建
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(预加载订单行与分配明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新订单状态(非竞争路径,如Processing→Shipped)
	UpdateStatus(ctx context.Context, orderID uint, status OrderStatus) error

	// UpdateStatusCAS 条件状态更新(Compare-And-Swap)
	// 契约:仅当当前状态在from集合内时才写入to
	// 返回实际匹配到的来源状态与是否更新成功——审计记录的From
	// 必须取返回的来源状态:调用方事务外读到的状态可能已被并发
	// 流转刷新(如取消CAS同时接受Pending和Processing)
	// updated=false表示状态已被并发修改,调用方应重读或报冲突
	UpdateStatusCAS(ctx context.Context, orderID uint, from []OrderStatus, to OrderStatus) (prior OrderStatus, updated bool, err error)

	// AppendStatusHistory 追加一条状态流转审计记录
	AppendStatusHistory(ctx context.Context, change *StatusChange) error

	// FindStatusHistory 查询订单的状态流转历史(按时间升序)
	FindStatusHistory(ctx context.Context, orderID uint) ([]StatusChange, error)

	// ListByUserID 查询用户的订单列表
	// 教学要点:支持分页,避免一次性查询大量数据
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
