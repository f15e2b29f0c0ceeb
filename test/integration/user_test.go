package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserRegister 用户注册流程
func TestUserRegister(t *testing.T) {
	RequireServer(t)

	t.Run("注册成功", func(t *testing.T) {
		email := GenerateTestEmail("register")
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "集成测试用户",
		}, "")

		require.Equal(t, 0, resp.Code, "注册失败: %s", resp.Message)

		var data RegisterData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, email, data.Email)
		assert.Equal(t, "customer", data.Role, "注册账号角色应为顾客")
		assert.NotZero(t, data.ID)
	})

	t.Run("重复邮箱被拒绝", func(t *testing.T) {
		email := GenerateTestEmail("dup")
		req := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "重复邮箱用户",
		}

		first := PostJSON(t, BaseURL+"/users/register", req, "")
		require.Equal(t, 0, first.Code)

		second := PostJSON(t, BaseURL+"/users/register", req, "")
		assert.NotEqual(t, 0, second.Code, "重复邮箱应注册失败")
	})

	t.Run("弱密码被拒绝", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    GenerateTestEmail("weak"),
			"password": "12345678", // 纯数字
			"nickname": "弱密码用户",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "纯数字密码应注册失败")
	})
}

// TestUserLogin 登录与Token校验
func TestUserLogin(t *testing.T) {
	RequireServer(t)

	email, _ := RegisterTestUser(t, "login")

	t.Run("密码错误", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "Wrong9999",
		}, "")

		assert.NotEqual(t, 0, resp.Code, "错误密码应登录失败")
	})

	t.Run("登录后可访问受保护接口", func(t *testing.T) {
		_, token := RegisterTestUser(t, "profile")

		resp := GetJSON(t, BaseURL+"/profile", token)
		require.Equal(t, 0, resp.Code, "携带Token应可访问: %s", resp.Message)
	})

	t.Run("无Token被拒绝", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/profile", "")
		assert.NotEqual(t, 0, resp.Code, "无Token应被拒绝")
	})
}

// TestUserLogout 登出后Token进入黑名单
func TestUserLogout(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "logout")

	logoutResp := PostJSON(t, BaseURL+"/users/logout", nil, token)
	require.Equal(t, 0, logoutResp.Code, "登出失败: %s", logoutResp.Message)

	// 同一Token再次访问应被黑名单拦截
	resp := GetJSON(t, BaseURL+"/profile", token)
	assert.NotEqual(t, 0, resp.Code, "登出后Token应失效")
}

// TestCustomerForbiddenOnAdminRoutes 顾客访问管理端接口被拒绝
func TestCustomerForbiddenOnAdminRoutes(t *testing.T) {
	RequireServer(t)

	_, token := RegisterTestUser(t, "forbidden")

	resp := PostJSON(t, BaseURL+"/admin/products", map[string]interface{}{
		"sku":   GenerateTestSKU(),
		"name":  "越权商品",
		"price": 100,
	}, token)

	assert.NotEqual(t, 0, resp.Code, "顾客创建商品应被拒绝")
}
