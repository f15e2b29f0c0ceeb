package product

import (
	"time"
)

// Product 商品实体(聚合根)
// DDD设计说明:
// 1. Product只承载商品目录信息,不存储库存数量——
//    生鲜商品的可售库存由批次台账派生(各未过期批次余量之和),
//    在商品表上冗余一份计数迟早会与台账漂移
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. SKU作为业务唯一标识(数据库层保证唯一性)
// 4. LowStockThreshold为0表示未单独配置,使用全局默认阈值
type Product struct {
	ID                uint
	SKU               string // 商品编码(业务唯一)
	Name              string // 商品名称
	Category          string // 品类(果蔬/乳品/肉禽/水产等)
	Unit              string // 计量单位(盒/份/千克)
	Price             int64  // 售价(单位:分,1元=100分)
	Description       string // 商品描述
	ImageURL          string // 商品图片URL
	LowStockThreshold int    // 低库存告警阈值(0=使用全局默认)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewProduct 创建新商品(工厂方法)
func NewProduct(sku, name, category, unit string, price int64, description, imageURL string, lowStockThreshold int) *Product {
	now := time.Now()
	return &Product{
		SKU:               sku,
		Name:              name,
		Category:          category,
		Unit:              unit,
		Price:             price,
		Description:       description,
		ImageURL:          imageURL,
		LowStockThreshold: lowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// EffectiveThreshold 生效的低库存阈值
// 商品未单独配置时回退到全局默认值
func (p *Product) EffectiveThreshold(defaultThreshold int) int {
	if p.LowStockThreshold > 0 {
		return p.LowStockThreshold
	}
	return defaultThreshold
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0
func (p *Product) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	p.Price = newPrice
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateThreshold 更新低库存阈值
// 业务规则:阈值不能为负,0表示恢复使用全局默认
func (p *Product) UpdateThreshold(threshold int) error {
	if threshold < 0 {
		return ErrInvalidThreshold
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新商品基本信息(空字段表示不修改)
func (p *Product) UpdateInfo(name, category, unit, description, imageURL string) {
	if name != "" {
		p.Name = name
	}
	if category != "" {
		p.Category = category
	}
	if unit != "" {
		p.Unit = unit
	}
	if description != "" {
		p.Description = description
	}
	if imageURL != "" {
		p.ImageURL = imageURL
	}
	p.UpdatedAt = time.Now()
}
