package dto

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateCartItemRequest 修改购物车行数量请求(0等价删除)
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=999"` // 指针区分0与缺省
}
