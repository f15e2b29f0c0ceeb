package product

import (
	"context"

	"github.com/xiebiao/freshmart/internal/domain/product"
)

// ManageProductUseCase 商品管理用例(后台,admin路由)
// 创建/改价/改信息/改告警阈值/删除
type ManageProductUseCase struct {
	productService product.Service
}

// NewManageProductUseCase 创建商品管理用例
func NewManageProductUseCase(productService product.Service) *ManageProductUseCase {
	return &ManageProductUseCase{productService: productService}
}

// CreateProductRequest 创建商品请求DTO
type CreateProductRequest struct {
	SKU               string
	Name              string
	Category          string
	Unit              string
	Price             int64
	Description       string
	ImageURL          string
	LowStockThreshold int
}

// CreateProductResponse 创建商品响应DTO
type CreateProductResponse struct {
	ID   uint   `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// Create 创建商品
func (uc *ManageProductUseCase) Create(ctx context.Context, req CreateProductRequest) (*CreateProductResponse, error) {
	p, err := uc.productService.CreateProduct(ctx, req.SKU, req.Name, req.Category, req.Unit,
		req.Price, req.Description, req.ImageURL, req.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &CreateProductResponse{ID: p.ID, SKU: p.SKU, Name: p.Name}, nil
}

// UpdateInfoRequest 更新商品信息请求DTO(空字段不修改)
type UpdateInfoRequest struct {
	Name        string
	Category    string
	Unit        string
	Description string
	ImageURL    string
}

// UpdateInfo 更新商品基本信息
func (uc *ManageProductUseCase) UpdateInfo(ctx context.Context, id uint, req UpdateInfoRequest) error {
	return uc.productService.UpdateProductInfo(ctx, id, req.Name, req.Category, req.Unit, req.Description, req.ImageURL)
}

// UpdatePrice 更新商品价格
func (uc *ManageProductUseCase) UpdatePrice(ctx context.Context, id uint, newPrice int64) error {
	return uc.productService.UpdateProductPrice(ctx, id, newPrice)
}

// UpdateThreshold 更新低库存告警阈值(0=恢复全局默认)
func (uc *ManageProductUseCase) UpdateThreshold(ctx context.Context, id uint, threshold int) error {
	return uc.productService.UpdateLowStockThreshold(ctx, id, threshold)
}

// Delete 删除商品
func (uc *ManageProductUseCase) Delete(ctx context.Context, id uint) error {
	return uc.productService.DeleteProduct(ctx, id)
}
