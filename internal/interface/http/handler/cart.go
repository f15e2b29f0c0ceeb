package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/freshmart/internal/application/cart"
	"github.com/xiebiao/freshmart/internal/interface/http/dto"
	"github.com/xiebiao/freshmart/internal/interface/http/middleware"
	"github.com/xiebiao/freshmart/pkg/response"
)

// CartHandler 购物车HTTP处理器
// 所有接口要求登录;库存检查全部是软性提示,不预留不拦截
type CartHandler struct {
	cartUseCase *appcart.CartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cartUseCase *appcart.CartUseCase) *CartHandler {
	return &CartHandler{cartUseCase: cartUseCase}
}

// Get 查询购物车
// @Summary      查询购物车
// @Description  每次查询刷新库存快照(available/in_stock仅为提示)
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Router       /api/v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.cartUseCase.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddItem 加购
// @Summary      加购
// @Description  同商品重复加购数量累加;库存不足不拦截,仅在响应中提示
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "加购信息"
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	result, err := h.cartUseCase.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateItem 修改购物车行数量
// @Summary      修改购物车行数量
// @Description  数量为0等价删除该行
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Failure      404 {object} response.Response "购物车中无此商品"
// @Router       /api/v1/cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	result, err := h.cartUseCase.UpdateItem(c.Request.Context(), userID, productID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveItem 删除购物车行
// @Summary      删除购物车行
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Success      200 {object} response.Response{data=appcart.CartResponse}
// @Failure      404 {object} response.Response "购物车中无此商品"
// @Router       /api/v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return
	}

	userID := middleware.MustGetUserID(c)
	result, err := h.cartUseCase.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Clear 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.cartUseCase.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
