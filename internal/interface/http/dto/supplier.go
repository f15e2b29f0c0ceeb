package dto

// CreateSupplierRequest 创建供应商请求
type CreateSupplierRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Contact string `json:"contact" binding:"max=50"`
	Phone   string `json:"phone" binding:"max=20"`
	Address string `json:"address" binding:"max=200"`
}

// UpdateSupplierRequest 更新供应商信息请求(空字段不修改)
type UpdateSupplierRequest struct {
	Name    string `json:"name" binding:"omitempty,min=1,max=100"`
	Contact string `json:"contact" binding:"max=50"`
	Phone   string `json:"phone" binding:"max=20"`
	Address string `json:"address" binding:"max=200"`
}

// SetSupplierActiveRequest 启用/停用供应商请求
type SetSupplierActiveRequest struct {
	Active *bool `json:"active" binding:"required"` // 指针区分false与缺省
}
