package dto

import "fmt"

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU               string `json:"sku" binding:"required,min=3,max=32"`
	Name              string `json:"name" binding:"required,min=1,max=200"`
	Category          string `json:"category" binding:"max=50"`
	Unit              string `json:"unit" binding:"max=20"`
	Price             int64  `json:"price" binding:"required,min=1"` // 售价(分)
	Description       string `json:"description"`
	ImageURL          string `json:"image_url" binding:"omitempty,url"`
	LowStockThreshold int    `json:"low_stock_threshold" binding:"min=0"`
}

// UpdateProductInfoRequest 更新商品信息请求(空字段不修改)
type UpdateProductInfoRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=200"`
	Category    string `json:"category" binding:"max=50"`
	Unit        string `json:"unit" binding:"max=20"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
}

// UpdatePriceRequest 更新价格请求
type UpdatePriceRequest struct {
	Price int64 `json:"price" binding:"required,min=1"` // 新售价(分)
}

// UpdateThresholdRequest 更新低库存告警阈值请求(0=恢复全局默认)
type UpdateThresholdRequest struct {
	Threshold int `json:"threshold" binding:"min=0"`
}

// FormatPriceYuan 格式化价格(分→元)
func FormatPriceYuan(priceFen int64) string {
	return fmt.Sprintf("%.2f", float64(priceFen)/100.0)
}
