package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getAvailable 查询商品当前可售量
func getAvailable(t *testing.T, productID uint) int {
	t.Helper()
	resp := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
	require.Equal(t, 0, resp.Code, "查询商品失败: %s", resp.Message)

	var data ProductData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.Available
}

// TestOrderFEFOAllocation 下单按FEFO拆分到批次
// 先入库远期批次,再入库近期批次——分配必须先吃近期的(先到期先出),
// 与入库顺序无关
func TestOrderFEFOAllocation(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, customerToken := RegisterTestUser(t, "fefo")

	productID := CreateTestProduct(t, adminToken, "鲜牛奶", 880)
	supplierID := CreateTestSupplier(t, adminToken)

	farBatchID := ReceiveTestBatch(t, adminToken, productID, supplierID, 10, 7)  // 7天后到期
	nearBatchID := ReceiveTestBatch(t, adminToken, productID, supplierID, 10, 2) // 2天后到期

	// 下12件:近期批次10件吃空,远期批次出2件
	orderResp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 12},
		},
	}, customerToken)
	require.Equal(t, 0, orderResp.Code, "下单失败: %s", orderResp.Message)

	var orderData OrderData
	require.NoError(t, json.Unmarshal(orderResp.Data, &orderData))
	assert.Equal(t, int64(880*12), orderData.Total, "订单总价应按下单时价格锁定")
	assert.Equal(t, "pending", orderData.Status)

	// 验证分配明细
	detailResp := GetJSON(t, fmt.Sprintf("%s/orders/%d", BaseURL, orderData.OrderID), customerToken)
	require.Equal(t, 0, detailResp.Code, "查询订单失败: %s", detailResp.Message)

	var detail OrderDetail
	require.NoError(t, json.Unmarshal(detailResp.Data, &detail))
	require.Len(t, detail.Lines, 1)
	require.Len(t, detail.Lines[0].Allocations, 2, "12件应拆到2个批次")

	first, second := detail.Lines[0].Allocations[0], detail.Lines[0].Allocations[1]
	assert.Equal(t, nearBatchID, first.BatchID, "应先消耗先到期的批次")
	assert.Equal(t, 10, first.QtyTaken)
	assert.Equal(t, farBatchID, second.BatchID)
	assert.Equal(t, 2, second.QtyTaken)

	// 可售量同步减少
	assert.Equal(t, 8, getAvailable(t, productID))

	// 首条状态历史是创建记录
	require.NotEmpty(t, detail.StatusHistory)
	assert.Equal(t, "pending", detail.StatusHistory[0].To)
}

// TestOrderInsufficientStock 库存不足时整单失败且零扣减
func TestOrderInsufficientStock(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, customerToken := RegisterTestUser(t, "short")

	okProductID := CreateTestProduct(t, adminToken, "充足商品", 500)
	shortProductID := CreateTestProduct(t, adminToken, "短缺商品", 300)
	supplierID := CreateTestSupplier(t, adminToken)

	ReceiveTestBatch(t, adminToken, okProductID, supplierID, 20, 5)
	ReceiveTestBatch(t, adminToken, shortProductID, supplierID, 3, 5)

	// 第二行库存不足,第一行已扣减的批次必须回补
	resp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": okProductID, "quantity": 5},
			{"product_id": shortProductID, "quantity": 10},
		},
	}, customerToken)
	assert.NotEqual(t, 0, resp.Code, "库存不足应整单失败")

	assert.Equal(t, 20, getAvailable(t, okProductID), "失败订单不应留下任何扣减")
	assert.Equal(t, 3, getAvailable(t, shortProductID))
}

// TestOrderCancelRestoresStock 取消订单逐批回补库存
func TestOrderCancelRestoresStock(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, customerToken := RegisterTestUser(t, "cancel")

	productID := CreateTestProduct(t, adminToken, "冷鲜鸡胸", 1280)
	supplierID := CreateTestSupplier(t, adminToken)
	ReceiveTestBatch(t, adminToken, productID, supplierID, 15, 4)

	orderResp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 6},
		},
	}, customerToken)
	require.Equal(t, 0, orderResp.Code, "下单失败: %s", orderResp.Message)

	var orderData OrderData
	require.NoError(t, json.Unmarshal(orderResp.Data, &orderData))
	require.Equal(t, 9, getAvailable(t, productID))

	statusURL := fmt.Sprintf("%s/orders/%d/status", BaseURL, orderData.OrderID)

	cancelResp := DoJSON(t, "PATCH", statusURL, map[string]string{"status": "cancelled"}, customerToken)
	require.Equal(t, 0, cancelResp.Code, "取消失败: %s", cancelResp.Message)

	assert.Equal(t, 15, getAvailable(t, productID), "取消后库存应完整回补")

	// 重复取消幂等成功
	again := DoJSON(t, "PATCH", statusURL, map[string]string{"status": "cancelled"}, customerToken)
	assert.Equal(t, 0, again.Code, "重复取消应幂等成功")

	assert.Equal(t, 15, getAvailable(t, productID), "幂等取消不应重复回补")
}

// TestOrderCustomerCannotFulfill 顾客不能推进履约状态
func TestOrderCustomerCannotFulfill(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, customerToken := RegisterTestUser(t, "fulfill")

	productID := CreateTestProduct(t, adminToken, "现烤面包", 680)
	supplierID := CreateTestSupplier(t, adminToken)
	ReceiveTestBatch(t, adminToken, productID, supplierID, 10, 2)

	orderResp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": 1},
		},
	}, customerToken)
	require.Equal(t, 0, orderResp.Code)

	var orderData OrderData
	require.NoError(t, json.Unmarshal(orderResp.Data, &orderData))

	statusURL := fmt.Sprintf("%s/orders/%d/status", BaseURL, orderData.OrderID)

	resp := DoJSON(t, "PATCH", statusURL, map[string]string{"status": "processing"}, customerToken)
	assert.NotEqual(t, 0, resp.Code, "顾客不应能推进履约")

	// 管理员推进正常
	adminResp := DoJSON(t, "PATCH", statusURL, map[string]string{"status": "processing"}, adminToken)
	assert.Equal(t, 0, adminResp.Code, "管理员推进失败: %s", adminResp.Message)
}

// TestOrderFromCart 购物车下单并清空购物车
func TestOrderFromCart(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)
	_, customerToken := RegisterTestUser(t, "cart")

	productID := CreateTestProduct(t, adminToken, "袋装沙拉", 990)
	supplierID := CreateTestSupplier(t, adminToken)
	ReceiveTestBatch(t, adminToken, productID, supplierID, 10, 3)

	addResp := PostJSON(t, BaseURL+"/cart/items", map[string]interface{}{
		"product_id": productID,
		"quantity":   2,
	}, customerToken)
	require.Equal(t, 0, addResp.Code, "加购失败: %s", addResp.Message)

	// items为空表示从购物车下单
	orderResp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{}, customerToken)
	require.Equal(t, 0, orderResp.Code, "购物车下单失败: %s", orderResp.Message)

	var orderData OrderData
	require.NoError(t, json.Unmarshal(orderResp.Data, &orderData))
	assert.Equal(t, int64(990*2), orderData.Total)

	// 下单成功后购物车应已清空,再次空单下单报购物车为空
	emptyResp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{}, customerToken)
	assert.NotEqual(t, 0, emptyResp.Code, "购物车已清空,应下单失败")
}
