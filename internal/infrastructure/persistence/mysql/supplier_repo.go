package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/freshmart/internal/domain/supplier"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// supplierRepository 供应商仓储实现
type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓储
func NewSupplierRepository(db *gorm.DB) supplier.Repository {
	return &supplierRepository{db: db}
}

// Create 创建供应商
func (r *supplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	model := &SupplierModel{
		Name:    s.Name,
		Contact: s.Contact,
		Phone:   s.Phone,
		Address: s.Address,
		Active:  s.Active,
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建供应商失败")
	}

	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找供应商
func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*supplier.Supplier, error) {
	var model SupplierModel
	db := r.getDB(ctx)
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, supplier.ErrSupplierNotFound
		}
		return nil, apperrors.Wrap(err, "查询供应商失败")
	}
	return toSupplierEntity(&model), nil
}

// Update 更新供应商信息
// Active使用map更新:结构体Updates会跳过false零值
func (r *supplierRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	db := r.getDB(ctx)
	result := db.Model(&SupplierModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"name":    s.Name,
			"contact": s.Contact,
			"phone":   s.Phone,
			"address": s.Address,
			"active":  s.Active,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新供应商失败")
	}
	if result.RowsAffected == 0 {
		return supplier.ErrSupplierNotFound
	}
	return nil
}

// List 分页查询供应商列表
func (r *supplierRepository) List(ctx context.Context, page, pageSize int, activeOnly bool) ([]*supplier.Supplier, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&SupplierModel{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询供应商总数失败")
	}

	var models []SupplierModel
	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询供应商列表失败")
	}

	suppliers := make([]*supplier.Supplier, len(models))
	for i := range models {
		suppliers[i] = toSupplierEntity(&models[i])
	}
	return suppliers, total, nil
}

func toSupplierEntity(model *SupplierModel) *supplier.Supplier {
	return &supplier.Supplier{
		ID:        model.ID,
		Name:      model.Name,
		Contact:   model.Contact,
		Phone:     model.Phone,
		Address:   model.Address,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *supplierRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
