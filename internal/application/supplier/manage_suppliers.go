package supplier

import (
	"context"

	"github.com/xiebiao/freshmart/internal/domain/supplier"
)

// ManageSuppliersUseCase 供应商管理用例(后台,admin路由)
type ManageSuppliersUseCase struct {
	repo supplier.Repository
}

// NewManageSuppliersUseCase 创建供应商管理用例
func NewManageSuppliersUseCase(repo supplier.Repository) *ManageSuppliersUseCase {
	return &ManageSuppliersUseCase{repo: repo}
}

// SupplierDTO 供应商DTO
type SupplierDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func toSupplierDTO(s *supplier.Supplier) *SupplierDTO {
	return &SupplierDTO{
		ID:        s.ID,
		Name:      s.Name,
		Contact:   s.Contact,
		Phone:     s.Phone,
		Address:   s.Address,
		Active:    s.Active,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// CreateSupplierRequest 创建供应商请求DTO
type CreateSupplierRequest struct {
	Name    string
	Contact string
	Phone   string
	Address string
}

// Create 创建供应商
func (uc *ManageSuppliersUseCase) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierDTO, error) {
	if req.Name == "" {
		return nil, supplier.ErrEmptyName
	}
	s := supplier.NewSupplier(req.Name, req.Contact, req.Phone, req.Address)
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierDTO(s), nil
}

// Get 查询供应商详情
func (uc *ManageSuppliersUseCase) Get(ctx context.Context, id uint) (*SupplierDTO, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierDTO(s), nil
}

// UpdateInfoRequest 更新供应商信息请求DTO(空字段不修改)
type UpdateInfoRequest struct {
	Name    string
	Contact string
	Phone   string
	Address string
}

// UpdateInfo 更新供应商信息
func (uc *ManageSuppliersUseCase) UpdateInfo(ctx context.Context, id uint, req UpdateInfoRequest) error {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	s.UpdateInfo(req.Name, req.Contact, req.Phone, req.Address)
	return uc.repo.Update(ctx, s)
}

// SetActive 启用/停用供应商
func (uc *ManageSuppliersUseCase) SetActive(ctx context.Context, id uint, active bool) error {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if active {
		s.Activate()
	} else {
		s.Deactivate()
	}
	return uc.repo.Update(ctx, s)
}

// SupplierListResponse 供应商列表响应DTO
type SupplierListResponse struct {
	List     []*SupplierDTO `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// List 分页查询供应商列表
func (uc *ManageSuppliersUseCase) List(ctx context.Context, page, pageSize int, activeOnly bool) (*SupplierListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	suppliers, total, err := uc.repo.List(ctx, page, pageSize, activeOnly)
	if err != nil {
		return nil, err
	}
	list := make([]*SupplierDTO, len(suppliers))
	for i, s := range suppliers {
		list[i] = toSupplierDTO(s)
	}
	return &SupplierListResponse{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}
