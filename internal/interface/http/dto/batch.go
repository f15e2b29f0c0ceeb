package dto

// ReceiveStockRequest 入库请求(收货创建批次)
type ReceiveStockRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	SupplierID uint   `json:"supplier_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	ExpiryDate string `json:"expiry_date" binding:"required"` // YYYY-MM-DD
	CostPrice  int64  `json:"cost_price" binding:"required,min=1"` // 进货单价(分)
}

// AdjustBatchRequest 批次余量人工调整请求
// delta为负:盘点差异、破损报废;delta为正:错录修正
type AdjustBatchRequest struct {
	Delta int `json:"delta" binding:"required"`
}
