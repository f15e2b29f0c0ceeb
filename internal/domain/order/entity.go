package order

import (
	"time"
)

// OrderStatus 订单状态
// 教学要点:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 封闭枚举+显式流转表,杜绝自由字符串的临时比较
// 3. 状态值设计:1-5递增,便于理解流转方向
type OrderStatus int

const (
	OrderStatusPending    OrderStatus = 1 // 待处理(已完成库存分配)
	OrderStatusProcessing OrderStatus = 2 // 处理中(拣货打包)
	OrderStatusShipped    OrderStatus = 3 // 已发货
	OrderStatusDelivered  OrderStatus = 4 // 已送达(终态)
	OrderStatusCancelled  OrderStatus = 5 // 已取消(终态,库存已回补)
)

// String 实现Stringer接口(方便日志输出)
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "待处理"
	case OrderStatusProcessing:
		return "处理中"
	case OrderStatusShipped:
		return "已发货"
	case OrderStatusDelivered:
		return "已送达"
	case OrderStatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// IsValid 检查状态值是否合法
func (s OrderStatus) IsValid() bool {
	return s >= OrderStatusPending && s <= OrderStatusCancelled
}

// IsTerminal 是否为终态(终态订单不可再变更)
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus 解析状态字符串(PATCH接口的目标状态参数)
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "pending":
		return OrderStatusPending, nil
	case "processing":
		return OrderStatusProcessing, nil
	case "shipped":
		return OrderStatusShipped, nil
	case "delivered":
		return OrderStatusDelivered, nil
	case "cancelled":
		return OrderStatusCancelled, nil
	}
	return 0, ErrInvalidStatusValue
}

// Code 状态的API字符串(与ParseOrderStatus互逆)
func (s OrderStatus) Code() string {
	switch s {
	case OrderStatusPending:
		return "pending"
	case OrderStatusProcessing:
		return "processing"
	case OrderStatusShipped:
		return "shipped"
	case OrderStatusDelivered:
		return "delivered"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// transitions 合法的状态流转表
// Pending → Processing → Shipped → Delivered
// Pending/Processing 还可 → Cancelled;已发货后不可取消
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CancellableStatuses 允许流转到Cancelled的来源状态
// 仓储的CAS更新以此作为WHERE条件,保证取消与发货并发时只有一方胜出
func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusProcessing}
}

// LineAllocation 订单行的批次分配记录
// 设计说明:只保存BatchID(台账是批次对象的唯一属主),
// 需要批次详情时按ID回查台账
type LineAllocation struct {
	ID       uint
	LineID   uint // 所属订单行ID
	BatchID  uint // 被扣减的批次ID
	QtyTaken int  // 从该批次扣减的数量
}

// OrderLine 订单行
// 教学要点:
// 1. 不是独立聚合根,必须通过Order访问
// 2. Price记录"下单时的单价"(历史价格快照,防止改价后历史订单金额变化)
// 3. 不变式:订单进入Pending后,sum(Allocations.QtyTaken) == Quantity
type OrderLine struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	Quantity    int
	Price       int64 // 下单时单价(分)
	Allocations []LineAllocation
}

// AllocatedQuantity 该行已分配总量
func (l *OrderLine) AllocatedQuantity() int {
	total := 0
	for _, a := range l.Allocations {
		total += a.QtyTaken
	}
	return total
}

// StatusChange 状态流转审计记录
// 每次流转记录时间与操作者,订单的完整生命周期可追溯
type StatusChange struct {
	ID      uint
	OrderID uint
	From    OrderStatus // 0表示创建(无来源状态)
	To      OrderStatus
	ActorID uint // 操作者用户ID
	At      time.Time
}

// Order 订单实体(聚合根)
type Order struct {
	ID            uint
	OrderNo       string      // 订单号(业务主键,全局唯一)
	UserID        uint        // 买家用户ID
	Total         int64       // 订单总金额(分),冗余字段
	Status        OrderStatus // 订单状态
	Lines         []OrderLine // 订单行(聚合内的子实体)
	StatusHistory []StatusChange
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder 创建新订单(工厂方法)
// 约定:Lines必须已经完成库存分配(CreateOrder用例保证),
// 初始状态Pending,并写入第一条审计记录
func NewOrder(orderNo string, userID uint, lines []OrderLine, total int64, actorID uint) *Order {
	now := time.Now()
	return &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		Total:     total,
		Status:    OrderStatusPending,
		Lines:     lines,
		StatusHistory: []StatusChange{
			{From: 0, To: OrderStatusPending, ActorID: actorID, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换(领域行为)
// 教学要点:
// 1. 目标状态与当前状态相同 → 幂等空操作(客户端重试场景),不写审计
// 2. 非法流转 → ErrInvalidTransition
// 3. 合法流转 → 更新状态并追加审计记录
func (o *Order) TransitionTo(target OrderStatus, actorID uint) error {
	if o.Status == target {
		return nil
	}
	if !o.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	now := time.Now()
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		OrderID: o.ID,
		From:    o.Status,
		To:      target,
		ActorID: actorID,
		At:      now,
	})
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// IsFullyAllocated 检查"不落半分配订单"不变式
// 进入Pending及之后,每行的分配总量必须等于购买数量
func (o *Order) IsFullyAllocated() bool {
	for i := range o.Lines {
		if o.Lines[i].AllocatedQuantity() != o.Lines[i].Quantity {
			return false
		}
	}
	return true
}

// CalculateTotal 根据订单行实时计算总金额
// 用于创建订单时校验冗余的Total字段
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, l := range o.Lines {
		total += l.Price * int64(l.Quantity)
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户(权限校验)
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
