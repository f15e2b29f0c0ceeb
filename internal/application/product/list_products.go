package product

import (
	"context"

	"github.com/xiebiao/freshmart/internal/domain/product"
)

// StockReader 可分配总量读取接口
// 商品的"库存"不是存储字段,是批次台账的派生值(未过期批次余量之和)
type StockReader interface {
	TotalRemaining(ctx context.Context, productID uint) (int, error)
}

// ListProductsUseCase 商品列表查询用例
// 设计说明:
// 1. 支持分页、搜索、品类过滤、排序
// 2. 列表项附带实时可售量(逐个读取台账;商品页为热点时
//    可在此加Redis缓存层,台账仍是唯一事实)
type ListProductsUseCase struct {
	productService product.Service
	stock          StockReader
}

// NewListProductsUseCase 创建列表查询用例
func NewListProductsUseCase(productService product.Service, stock StockReader) *ListProductsUseCase {
	return &ListProductsUseCase{
		productService: productService,
		stock:          stock,
	}
}

// ListProductsRequest 列表查询请求DTO
type ListProductsRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(搜索名称、SKU)
	Category string // 品类过滤
	SortBy   string // 排序方式(price_asc, price_desc, created_at_desc)
}

// ProductListItem 列表项DTO(不含description)
type ProductListItem struct {
	ID        uint   `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Unit      string `json:"unit"`
	Price     int64  `json:"price"` // 价格(分)
	Available int    `json:"available"`
	ImageURL  string `json:"image_url"`
	CreatedAt string `json:"created_at"`
}

// ListProductsResponse 列表查询响应DTO
type ListProductsResponse struct {
	List       []ProductListItem `json:"list"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Execute 执行列表查询用例
func (uc *ListProductsUseCase) Execute(ctx context.Context, req ListProductsRequest) (*ListProductsResponse, error) {
	// 1. 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	// 2. 查询商品
	params := product.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Category: req.Category,
		SortBy:   req.SortBy,
	}
	products, total, err := uc.productService.ListProducts(ctx, params)
	if err != nil {
		return nil, err
	}

	// 3. 转换为DTO并附带可售量
	list := make([]ProductListItem, len(products))
	for i, p := range products {
		available, err := uc.stock.TotalRemaining(ctx, p.ID)
		if err != nil {
			available = 0
		}
		list[i] = ProductListItem{
			ID:        p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			Category:  p.Category,
			Unit:      p.Unit,
			Price:     p.Price,
			Available: available,
			ImageURL:  p.ImageURL,
			CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	// 4. 计算总页数
	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListProductsResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetProductUseCase 商品详情查询用例
type GetProductUseCase struct {
	productService product.Service
	stock          StockReader
}

// NewGetProductUseCase 创建商品详情查询用例
func NewGetProductUseCase(productService product.Service, stock StockReader) *GetProductUseCase {
	return &GetProductUseCase{productService: productService, stock: stock}
}

// ProductDetailResponse 商品详情响应DTO
type ProductDetailResponse struct {
	ID                uint   `json:"id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Unit              string `json:"unit"`
	Price             int64  `json:"price"`
	Description       string `json:"description"`
	ImageURL          string `json:"image_url"`
	Available         int    `json:"available"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	CreatedAt         string `json:"created_at"`
}

// Execute 查询商品详情
func (uc *GetProductUseCase) Execute(ctx context.Context, id uint) (*ProductDetailResponse, error) {
	p, err := uc.productService.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	available, err := uc.stock.TotalRemaining(ctx, p.ID)
	if err != nil {
		available = 0
	}
	return &ProductDetailResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Category:          p.Category,
		Unit:              p.Unit,
		Price:             p.Price,
		Description:       p.Description,
		ImageURL:          p.ImageURL,
		Available:         available,
		LowStockThreshold: p.LowStockThreshold,
		CreatedAt:         p.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
