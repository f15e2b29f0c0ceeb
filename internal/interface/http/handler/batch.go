package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbatch "github.com/xiebiao/freshmart/internal/application/batch"
	"github.com/xiebiao/freshmart/internal/interface/http/dto"
	"github.com/xiebiao/freshmart/pkg/response"
)

// BatchHandler 库存批次HTTP处理器(全部挂admin路由)
// 入库/查询/人工调整/删除;批次状态全部为查询时派生
type BatchHandler struct {
	receiveUseCase *appbatch.ReceiveStockUseCase
	getUseCase     *appbatch.GetBatchUseCase
	listUseCase    *appbatch.ListBatchesUseCase
	adjustUseCase  *appbatch.AdjustBatchUseCase
	deleteUseCase  *appbatch.DeleteBatchUseCase
}

// NewBatchHandler 创建批次处理器
func NewBatchHandler(
	receiveUseCase *appbatch.ReceiveStockUseCase,
	getUseCase *appbatch.GetBatchUseCase,
	listUseCase *appbatch.ListBatchesUseCase,
	adjustUseCase *appbatch.AdjustBatchUseCase,
	deleteUseCase *appbatch.DeleteBatchUseCase,
) *BatchHandler {
	return &BatchHandler{
		receiveUseCase: receiveUseCase,
		getUseCase:     getUseCase,
		listUseCase:    listUseCase,
		adjustUseCase:  adjustUseCase,
		deleteUseCase:  deleteUseCase,
	}
}

// Receive 入库(收货创建批次)
// @Summary      入库
// @Description  收货创建新批次;保质期为日历日期,到期日当天仍可售
// @Tags         批次管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReceiveStockRequest true "入库信息"
// @Success      200 {object} response.Response{data=appbatch.BatchDTO}
// @Failure      400 {object} response.Response "参数错误(保质期早于今天等)"
// @Failure      404 {object} response.Response "商品或供应商不存在"
// @Router       /api/v1/admin/batches [post]
func (h *BatchHandler) Receive(c *gin.Context) {
	var req dto.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.receiveUseCase.Execute(c.Request.Context(), appbatch.ReceiveStockRequest{
		ProductID:  req.ProductID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		ExpiryDate: req.ExpiryDate,
		CostPrice:  req.CostPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 批次详情
// @Summary      批次详情
// @Tags         批次管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "批次ID"
// @Success      200 {object} response.Response{data=appbatch.BatchDTO}
// @Failure      404 {object} response.Response "批次不存在"
// @Router       /api/v1/admin/batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
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

// List 批次列表
// @Summary      批次列表
// @Description  product_id与status二选一:按商品查询(FEFO顺序)或按派生状态过滤
// @Tags         批次管理
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query int false "商品ID"
// @Param        status query string false "派生状态(active/expired/exhausted)"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=appbatch.BatchListResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/admin/batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if pidStr := c.Query("product_id"); pidStr != "" {
		pid, err := strconv.ParseUint(pidStr, 10, 64)
		if err != nil || pid == 0 {
			response.ErrorWithCode(c, 40900, "参数错误: 无效的product_id")
			return
		}
		result, err := h.listUseCase.ListByProduct(c.Request.Context(), uint(pid), page, pageSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	status := c.Query("status")
	if status == "" {
		response.ErrorWithCode(c, 40900, "参数错误: 需要product_id或status")
		return
	}
	result, err := h.listUseCase.ListByStatus(c.Request.Context(), status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Adjust 人工调整批次余量
// @Summary      调整批次余量
// @Description  负delta:盘点差异/破损报废;正delta:错录修正;调整后余量必须在[0,入库量]内
// @Tags         批次管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "批次ID"
// @Param        request body dto.AdjustBatchRequest true "调整量"
// @Success      200 {object} response.Response{data=appbatch.BatchDTO}
// @Failure      400 {object} response.Response "调整越界"
// @Failure      404 {object} response.Response "批次不存在"
// @Router       /api/v1/admin/batches/{id}/adjust [post]
func (h *BatchHandler) Adjust(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req dto.AdjustBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.adjustUseCase.Execute(c.Request.Context(), id, req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除批次
// @Summary      删除批次
// @Description  仅限从未出库的批次(余量==入库量),用于修正错误入库
// @Tags         批次管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "批次ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "批次不存在"
// @Failure      409 {object} response.Response "批次已发生出库"
// @Router       /api/v1/admin/batches/{id} [delete]
func (h *BatchHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
