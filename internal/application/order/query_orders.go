package order

import (
	"context"

	"github.com/xiebiao/freshmart/internal/domain/order"
	"github.com/xiebiao/freshmart/internal/domain/user"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// GetOrderUseCase 订单详情查询用例
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建订单详情查询用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// OrderLineDTO 订单行DTO
type OrderLineDTO struct {
	ProductID   uint          `json:"product_id"`
	Quantity    int           `json:"quantity"`
	Price       int64         `json:"price"`
	Allocations []LineAllocDTO `json:"allocations"`
}

// LineAllocDTO 批次分配明细DTO
type LineAllocDTO struct {
	BatchID  uint `json:"batch_id"`
	QtyTaken int  `json:"qty_taken"`
}

// StatusChangeDTO 状态流转审计DTO
type StatusChangeDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
	At   string `json:"at"`
}

// OrderDetailResponse 订单详情响应DTO
type OrderDetailResponse struct {
	OrderID       uint              `json:"order_id"`
	OrderNo       string            `json:"order_no"`
	Status        string            `json:"status"`
	Total         int64             `json:"total"`
	TotalYuan     string            `json:"total_yuan"`
	Lines         []OrderLineDTO    `json:"lines"`
	StatusHistory []StatusChangeDTO `json:"status_history"`
	CreatedAt     string            `json:"created_at"`
}

// Execute 查询订单详情
// 权限:订单所有者或管理员
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID, actorID uint, actorRole user.Role) (*OrderDetailResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(actorID) && actorRole != user.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	// 审计记录单独存储,详情页按需加载
	history, err := uc.orderRepo.FindStatusHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.StatusHistory = history

	return toOrderDetail(o), nil
}

// ListOrdersUseCase 订单列表查询用例
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表查询用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// OrderListItem 列表项DTO(不含行明细)
type OrderListItem struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	CreatedAt string `json:"created_at"`
}

// ListOrdersResponse 列表响应DTO
type ListOrdersResponse struct {
	List     []OrderListItem `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// Execute 查询用户订单列表(分页)
func (uc *ListOrdersUseCase) Execute(ctx context.Context, userID uint, page, pageSize int) (*ListOrdersResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	orders, total, err := uc.orderRepo.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]OrderListItem, len(orders))
	for i, o := range orders {
		list[i] = OrderListItem{
			OrderID:   o.ID,
			OrderNo:   o.OrderNo,
			Status:    o.Status.Code(),
			Total:     o.Total,
			TotalYuan: formatPrice(o.Total),
			CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return &ListOrdersResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// toOrderDetail 实体转详情DTO
func toOrderDetail(o *order.Order) *OrderDetailResponse {
	lines := make([]OrderLineDTO, len(o.Lines))
	for i, line := range o.Lines {
		allocs := make([]LineAllocDTO, len(line.Allocations))
		for j, a := range line.Allocations {
			allocs[j] = LineAllocDTO{BatchID: a.BatchID, QtyTaken: a.QtyTaken}
		}
		lines[i] = OrderLineDTO{
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Allocations: allocs,
		}
	}

	history := make([]StatusChangeDTO, len(o.StatusHistory))
	for i, h := range o.StatusHistory {
		from := ""
		if h.From != 0 {
			from = h.From.Code()
		}
		history[i] = StatusChangeDTO{
			From: from,
			To:   h.To.Code(),
			At:   h.At.Format("2006-01-02 15:04:05"),
		}
	}

	return &OrderDetailResponse{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		Status:        o.Status.Code(),
		Total:         o.Total,
		TotalYuan:     formatPrice(o.Total),
		Lines:         lines,
		StatusHistory: history,
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
