package dto

// CreateOrderRequest 下单请求
// Items为空时从购物车下单(下单成功后清空购物车)
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"omitempty,dive"`
}

// OrderItemRequest 下单明细项
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=999"`
}

// TransitionOrderRequest 订单状态流转请求
// 统一的PATCH接口:processing/shipped/delivered/cancelled
type TransitionOrderRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

// CreateOrderResponse 下单响应
type CreateOrderResponse struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
