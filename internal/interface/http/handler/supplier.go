package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appsupplier "github.com/xiebiao/freshmart/internal/application/supplier"
	"github.com/xiebiao/freshmart/internal/interface/http/dto"
	"github.com/xiebiao/freshmart/pkg/response"
)

// SupplierHandler 供应商HTTP处理器(全部挂admin路由)
type SupplierHandler struct {
	manageUseCase *appsupplier.ManageSuppliersUseCase
}

// NewSupplierHandler 创建供应商处理器
func NewSupplierHandler(manageUseCase *appsupplier.ManageSuppliersUseCase) *SupplierHandler {
	return &SupplierHandler{manageUseCase: manageUseCase}
}

// Create 创建供应商
// @Summary      创建供应商
// @Tags         供应商管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateSupplierRequest true "供应商信息"
// @Success      200 {object} response.Response{data=appsupplier.SupplierDTO}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/admin/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Create(c.Request.Context(), appsupplier.CreateSupplierRequest{
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 供应商详情
// @Summary      供应商详情
// @Tags         供应商管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "供应商ID"
// @Success      200 {object} response.Response{data=appsupplier.SupplierDTO}
// @Failure      404 {object} response.Response "供应商不存在"
// @Router       /api/v1/admin/suppliers/{id} [get]
func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	result, err := h.manageUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 更新供应商信息
// @Summary      更新供应商信息
// @Tags         供应商管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "供应商ID"
// @Param        request body dto.UpdateSupplierRequest true "供应商信息(空字段不修改)"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	err = h.manageUseCase.UpdateInfo(c.Request.Context(), id, appsupplier.UpdateInfoRequest{
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// SetActive 启用/停用供应商
// @Summary      启用/停用供应商
// @Description  停用后不能再为该供应商入库,已有批次不受影响
// @Tags         供应商管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "供应商ID"
// @Param        request body dto.SetSupplierActiveRequest true "启用状态"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/suppliers/{id}/active [put]
func (h *SupplierHandler) SetActive(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.SetSupplierActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.manageUseCase.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// List 供应商列表
// @Summary      供应商列表
// @Tags         供应商管理
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        active_only query bool false "仅启用的供应商"
// @Success      200 {object} response.Response{data=appsupplier.SupplierListResponse}
// @Router       /api/v1/admin/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	activeOnly := c.Query("active_only") == "true"

	result, err := h.manageUseCase.List(c.Request.Context(), page, pageSize, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
