package product

import (
	"context"
	"regexp"
)

// Service 商品领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 商品管理是后台操作,角色权限在中间件层校验,服务层不重复检查
type Service interface {
	// CreateProduct 创建商品(上架)
	// 业务规则:
	// - SKU格式必须合法(字母数字与连字符,3-32位)
	// - 价格必须在1-9999999分之间
	// - 阈值必须>=0
	// - SKU不能重复
	CreateProduct(ctx context.Context, sku, name, category, unit string, price int64, description, imageURL string, lowStockThreshold int) (*Product, error)

	// GetProductByID 根据ID获取商品详情
	GetProductByID(ctx context.Context, id uint) (*Product, error)

	// GetProductBySKU 根据SKU获取商品
	GetProductBySKU(ctx context.Context, sku string) (*Product, error)

	// UpdateProductInfo 更新商品基本信息
	UpdateProductInfo(ctx context.Context, id uint, name, category, unit, description, imageURL string) error

	// UpdateProductPrice 更新商品价格
	UpdateProductPrice(ctx context.Context, id uint, newPrice int64) error

	// UpdateLowStockThreshold 更新低库存告警阈值
	UpdateLowStockThreshold(ctx context.Context, id uint, threshold int) error

	// DeleteProduct 删除商品
	DeleteProduct(ctx context.Context, id uint) error

	// ListProducts 分页查询商品列表
	ListProducts(ctx context.Context, params ListParams) ([]*Product, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建商品领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateProduct 创建商品
func (s *service) CreateProduct(ctx context.Context, sku, name, category, unit string, price int64, description, imageURL string, lowStockThreshold int) (*Product, error) {
	// 1. SKU格式校验
	if !isValidSKU(sku) {
		return nil, ErrInvalidSKU
	}

	// 2. 价格范围校验(1分-99999.99元)
	if price < 1 || price > 9999999 {
		return nil, ErrInvalidPrice
	}

	// 3. 阈值校验
	if lowStockThreshold < 0 {
		return nil, ErrInvalidThreshold
	}

	// 4. 检查SKU是否已存在
	existing, err := s.repo.FindBySKU(ctx, sku)
	if err == nil && existing != nil {
		return nil, ErrSKUDuplicate
	}
	if err != nil && err != ErrProductNotFound {
		return nil, err
	}

	// 5. 创建商品实体并持久化
	product := NewProduct(sku, name, category, unit, price, description, imageURL, lowStockThreshold)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProductByID 根据ID获取商品
func (s *service) GetProductByID(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

// GetProductBySKU 根据SKU获取商品
func (s *service) GetProductBySKU(ctx context.Context, sku string) (*Product, error) {
	if !isValidSKU(sku) {
		return nil, ErrInvalidSKU
	}
	return s.repo.FindBySKU(ctx, sku)
}

// UpdateProductInfo 更新商品信息
func (s *service) UpdateProductInfo(ctx context.Context, id uint, name, category, unit, description, imageURL string) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.UpdateInfo(name, category, unit, description, imageURL)
	return s.repo.Update(ctx, product)
}

// UpdateProductPrice 更新商品价格
func (s *service) UpdateProductPrice(ctx context.Context, id uint, newPrice int64) error {
	if newPrice < 1 || newPrice > 9999999 {
		return ErrInvalidPrice
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := product.UpdatePrice(newPrice); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

// UpdateLowStockThreshold 更新低库存告警阈值
func (s *service) UpdateLowStockThreshold(ctx context.Context, id uint, threshold int) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := product.UpdateThreshold(threshold); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct 删除商品
func (s *service) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListProducts 分页查询商品列表
func (s *service) ListProducts(ctx context.Context, params ListParams) ([]*Product, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidSKU 校验SKU格式
// 规则:3-32位,字母数字与连字符,如 FRT-APL-001
var skuPattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,32}$`)

func isValidSKU(sku string) bool {
	return skuPattern.MatchString(sku)
}
