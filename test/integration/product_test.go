package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProductLifecycle 商品管理全流程
// 创建 → 公开查询(可售量为0) → 入库 → 可售量变化 → 改价
func TestProductLifecycle(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)

	productID := CreateTestProduct(t, adminToken, "有机菠菜", 590)

	t.Run("公开详情可见且可售量为0", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
		require.Equal(t, 0, resp.Code, "查询商品失败: %s", resp.Message)

		var data ProductData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "有机菠菜", data.Name)
		assert.Equal(t, int64(590), data.Price)
		assert.Equal(t, 0, data.Available, "未入库商品可售量应为0")
	})

	t.Run("入库后可售量实时变化", func(t *testing.T) {
		supplierID := CreateTestSupplier(t, adminToken)
		ReceiveTestBatch(t, adminToken, productID, supplierID, 30, 5)

		resp := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
		require.Equal(t, 0, resp.Code)

		var data ProductData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 30, data.Available, "入库30后可售量应为30")
	})

	t.Run("改价后公开价格变化", func(t *testing.T) {
		resp := DoJSON(t, "PUT", fmt.Sprintf("%s/admin/products/%d/price", BaseURL, productID),
			map[string]interface{}{"price": 690}, adminToken)
		require.Equal(t, 0, resp.Code, "改价失败: %s", resp.Message)

		detail := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
		var data ProductData
		require.NoError(t, json.Unmarshal(detail.Data, &data))
		assert.Equal(t, int64(690), data.Price)
	})
}

// TestProductSKUDuplicate 重复SKU被拒绝
func TestProductSKUDuplicate(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)

	sku := GenerateTestSKU()
	req := map[string]interface{}{
		"sku":   sku,
		"name":  "重复SKU商品",
		"price": 100,
	}

	first := PostJSON(t, BaseURL+"/admin/products", req, adminToken)
	require.Equal(t, 0, first.Code, "首次创建应成功: %s", first.Message)

	second := PostJSON(t, BaseURL+"/admin/products", req, adminToken)
	assert.NotEqual(t, 0, second.Code, "重复SKU应创建失败")
}

// TestBatchAdjustAndDelete 批次人工调整与删除规则
func TestBatchAdjustAndDelete(t *testing.T) {
	RequireServer(t)

	adminToken := LoginAdmin(t)

	productID := CreateTestProduct(t, adminToken, "盒装草莓", 1590)
	supplierID := CreateTestSupplier(t, adminToken)
	batchID := ReceiveTestBatch(t, adminToken, productID, supplierID, 20, 3)

	t.Run("负向调整减少余量", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/admin/batches/%d/adjust", BaseURL, batchID),
			map[string]interface{}{"delta": -5}, adminToken)
		require.Equal(t, 0, resp.Code, "调整失败: %s", resp.Message)

		detail := GetJSON(t, fmt.Sprintf("%s/admin/batches/%d", BaseURL, batchID), adminToken)
		var data BatchData
		require.NoError(t, json.Unmarshal(detail.Data, &data))
		assert.Equal(t, 15, data.QuantityRemaining)
	})

	t.Run("调整越界被拒绝", func(t *testing.T) {
		// 余量15,回补上限是quantity_received=20,+6越界
		resp := PostJSON(t, fmt.Sprintf("%s/admin/batches/%d/adjust", BaseURL, batchID),
			map[string]interface{}{"delta": 6}, adminToken)
		assert.NotEqual(t, 0, resp.Code, "超过入库量的回补应被拒绝")
	})

	t.Run("动过的批次禁止删除", func(t *testing.T) {
		resp := DoJSON(t, "DELETE", fmt.Sprintf("%s/admin/batches/%d", BaseURL, batchID), nil, adminToken)
		assert.NotEqual(t, 0, resp.Code, "余量≠入库量的批次应禁止删除")
	})

	t.Run("未动过的批次可删除", func(t *testing.T) {
		freshID := ReceiveTestBatch(t, adminToken, productID, supplierID, 10, 3)
		resp := DoJSON(t, "DELETE", fmt.Sprintf("%s/admin/batches/%d", BaseURL, freshID), nil, adminToken)
		require.Equal(t, 0, resp.Code, "全新批次应可删除: %s", resp.Message)
	})
}
