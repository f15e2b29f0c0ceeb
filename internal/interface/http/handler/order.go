package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/freshmart/internal/application/order"
	"github.com/xiebiao/freshmart/internal/domain/order"
	"github.com/xiebiao/freshmart/internal/interface/http/dto"
	"github.com/xiebiao/freshmart/internal/interface/http/middleware"
	"github.com/xiebiao/freshmart/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase     *apporder.CreateOrderUseCase
	getUseCase        *apporder.GetOrderUseCase
	listUseCase       *apporder.ListOrdersUseCase
	transitionUseCase *apporder.TransitionOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	getUseCase *apporder.GetOrderUseCase,
	listUseCase *apporder.ListOrdersUseCase,
	transitionUseCase *apporder.TransitionOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		createUseCase:     createUseCase,
		getUseCase:        getUseCase,
		listUseCase:       listUseCase,
		transitionUseCase: transitionUseCase,
	}
}

// Create 创建订单
// @Summary      创建订单
// @Description  下单即按FEFO(先到期先出)把数量拆分到具体批次,全有或全无:
// @Description  任何一行库存不足则整单失败,已扣减批次全部回补
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "订单明细(items为空则从购物车下单)"
// @Success      200 {object} response.Response{data=dto.CreateOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误或购物车为空"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "商品不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	items := make([]apporder.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		UserID: userID,
		Items:  items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CreateOrderResponse{
		OrderID:   result.OrderID,
		OrderNo:   result.OrderNo,
		Total:     result.Total,
		TotalYuan: result.TotalYuan,
		Status:    result.Status,
		CreatedAt: result.CreatedAt,
	})
}

// Get 订单详情
// @Summary      订单详情
// @Description  含订单行、批次分配明细与状态流转历史;仅所有者或管理员可见
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDetailResponse}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id,
		middleware.MustGetUserID(c), middleware.GetRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 我的订单列表
// @Summary      我的订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=apporder.ListOrdersResponse}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listUseCase.Execute(c.Request.Context(),
		middleware.MustGetUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStatus 订单状态流转
// @Summary      订单状态流转
// @Description  统一的状态流转接口:顾客只能取消自己的订单(pending/processing),
// @Description  管理员可推进履约(processing/shipped/delivered)或取消;
// @Description  取消在同一事务内逐批回补库存;重复提交同目标状态幂等成功
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.TransitionOrderRequest true "目标状态"
// @Success      200 {object} response.Response "流转成功"
// @Failure      400 {object} response.Response "非法流转(如已发货后取消)"
// @Failure      403 {object} response.Response "无权操作"
// @Failure      404 {object} response.Response "订单不存在"
// @Failure      409 {object} response.Response "并发冲突,请重试"
// @Router       /api/v1/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	target, err := order.ParseOrderStatus(req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	err = h.transitionUseCase.Execute(c.Request.Context(), apporder.TransitionOrderRequest{
		OrderID:   id,
		Target:    target,
		ActorID:   middleware.MustGetUserID(c),
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
