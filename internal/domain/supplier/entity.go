package supplier

import (
	"time"
)

// Supplier 供应商实体(聚合根)
// 设计说明:
// 1. 批次入库时必须指定供应商,用于食品安全追溯
//    (某批次出现质量问题时,按SupplierID反查同源批次)
// 2. 供应商停用后不再接收新批次,历史批次的关联保留
type Supplier struct {
	ID        uint
	Name      string // 供应商名称
	Contact   string // 联系人
	Phone     string // 联系电话
	Address   string // 地址
	Active    bool   // 是否启用
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSupplier 创建新供应商(工厂方法)
func NewSupplier(name, contact, phone, address string) *Supplier {
	now := time.Now()
	return &Supplier{
		Name:      name,
		Contact:   contact,
		Phone:     phone,
		Address:   address,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Deactivate 停用供应商(领域行为)
// 停用后不可再作为新批次的来源
func (s *Supplier) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
}

// Activate 重新启用供应商
func (s *Supplier) Activate() {
	s.Active = true
	s.UpdatedAt = time.Now()
}

// UpdateInfo 更新供应商信息(空字段表示不修改)
func (s *Supplier) UpdateInfo(name, contact, phone, address string) {
	if name != "" {
		s.Name = name
	}
	if contact != "" {
		s.Contact = contact
	}
	if phone != "" {
		s.Phone = phone
	}
	if address != "" {
		s.Address = address
	}
	s.UpdatedAt = time.Now()
}
