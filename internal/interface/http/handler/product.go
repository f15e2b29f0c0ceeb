package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/freshmart/internal/application/product"
	"github.com/xiebiao/freshmart/internal/interface/http/dto"
	"github.com/xiebiao/freshmart/pkg/response"
)

// ProductHandler 商品HTTP处理器
// 公开路由:列表/详情(可售量实时派生自批次台账)
// admin路由:创建/改价/改信息/改告警阈值/删除
type ProductHandler struct {
	listUseCase   *appproduct.ListProductsUseCase
	getUseCase    *appproduct.GetProductUseCase
	manageUseCase *appproduct.ManageProductUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(
	listUseCase *appproduct.ListProductsUseCase,
	getUseCase *appproduct.GetProductUseCase,
	manageUseCase *appproduct.ManageProductUseCase,
) *ProductHandler {
	return &ProductHandler{
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
		manageUseCase: manageUseCase,
	}
}

// List 商品列表
// @Summary      商品列表
// @Description  分页查询商品，支持搜索/品类过滤/排序，附带实时可售量
// @Tags         商品
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词(名称/SKU)"
// @Param        category query string false "品类"
// @Param        sort_by query string false "排序(price_asc/price_desc/created_at_desc)"
// @Success      200 {object} response.Response{data=appproduct.ListProductsResponse}
// @Router       /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listUseCase.Execute(c.Request.Context(), appproduct.ListProductsRequest{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		SortBy:   c.Query("sort_by"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appproduct.ProductDetailResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create 创建商品
// @Summary      创建商品
// @Tags         商品管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=appproduct.CreateProductResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "SKU已存在"
// @Router       /api/v1/admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Create(c.Request.Context(), appproduct.CreateProductRequest{
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		Unit:              req.Unit,
		Price:             req.Price,
		Description:       req.Description,
		ImageURL:          req.ImageURL,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateInfo 更新商品信息
// @Summary      更新商品信息
// @Tags         商品管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdateProductInfoRequest true "商品信息(空字段不修改)"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/products/{id} [put]
func (h *ProductHandler) UpdateInfo(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.UpdateProductInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	err = h.manageUseCase.UpdateInfo(c.Request.Context(), id, appproduct.UpdateInfoRequest{
		Name:        req.Name,
		Category:    req.Category,
		Unit:        req.Unit,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdatePrice 更新商品价格
// @Summary      更新商品价格
// @Description  改价只影响后续订单，历史订单保留下单时价格快照
// @Tags         商品管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdatePriceRequest true "新价格(分)"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/products/{id}/price [put]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.manageUseCase.UpdatePrice(c.Request.Context(), id, req.Price); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateThreshold 更新低库存告警阈值
// @Summary      更新低库存告警阈值
// @Description  0表示恢复使用全局默认阈值
// @Tags         商品管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdateThresholdRequest true "阈值"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/products/{id}/threshold [put]
func (h *ProductHandler) UpdateThreshold(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.manageUseCase.UpdateThreshold(c.Request.Context(), id, req.Threshold); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Delete 删除商品
// @Summary      删除商品
// @Tags         商品管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.manageUseCase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// parseIDParam 解析路径ID参数,失败时直接写响应并返回error
func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的"+name)
		return 0, errInvalidIDParam
	}
	return uint(id), nil
}

var errInvalidIDParam = errors.New("invalid id param")
