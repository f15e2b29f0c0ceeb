package supplier

import (
	"context"
)

// Repository 供应商仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建供应商
	Create(ctx context.Context, supplier *Supplier) error

	// FindByID 根据ID查找供应商
	FindByID(ctx context.Context, id uint) (*Supplier, error)

	// Update 更新供应商信息
	Update(ctx context.Context, supplier *Supplier) error

	// List 分页查询供应商列表
	List(ctx context.Context, page, pageSize int, activeOnly bool) ([]*Supplier, int64, error)
}
