package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：测试辅助工具
// 集成测试以黑盒方式走完整HTTP栈,需要本地起好服务与依赖(MySQL/Redis):
//
//	go run ./cmd/api
//	go test ./test/integration/
//
// 服务未启动时所有用例自动跳过,不会误报失败

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL(用于探测服务是否启动)
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProductData 商品响应数据
type ProductData struct {
	ID                uint   `json:"id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Price             int64  `json:"price"`
	Available         int    `json:"available"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// SupplierData 供应商响应数据
type SupplierData struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// BatchData 批次响应数据
type BatchData struct {
	ID                uint   `json:"id"`
	ProductID         uint   `json:"product_id"`
	QuantityReceived  int    `json:"quantity_received"`
	QuantityRemaining int    `json:"quantity_remaining"`
	ExpiryDate        string `json:"expiry_date"`
	Status            string `json:"status"`
}

// OrderData 下单响应数据
type OrderData struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
}

// OrderDetail 订单详情响应数据
type OrderDetail struct {
	OrderID       uint           `json:"order_id"`
	OrderNo       string         `json:"order_no"`
	Status        string         `json:"status"`
	Total         int64          `json:"total"`
	Lines         []OrderLine    `json:"lines"`
	StatusHistory []StatusChange `json:"status_history"`
}

// OrderLine 订单行
type OrderLine struct {
	ProductID   uint         `json:"product_id"`
	Quantity    int          `json:"quantity"`
	Price       int64        `json:"price"`
	Allocations []Allocation `json:"allocations"`
}

// Allocation 批次分配明细
type Allocation struct {
	BatchID  uint `json:"batch_id"`
	QtyTaken int  `json:"qty_taken"`
}

// StatusChange 状态流转记录
type StatusChange struct {
	From string `json:"from"`
	To   string `json:"to"`
	At   string `json:"at"`
}

// RequireServer 探测服务是否启动,未启动则跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("本地服务未启动,跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// DoJSON 发送携带JSON体的请求并解析统一响应
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return DoJSON(t, "POST", url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return DoJSON(t, "GET", url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用纳秒时间戳避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestSKU 生成唯一的测试SKU
func GenerateTestSKU() string {
	return fmt.Sprintf("TST-%d", time.Now().UnixNano()%1000000000)
}

// RegisterTestUser 注册测试顾客并返回Token
// 封装注册+登录的完整流程,让测试只关注业务逻辑
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	t.Helper()

	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// LoginAdmin 以管理员身份登录,返回Token
// 管理员账号无法通过注册接口创建(注册只产生顾客),需要预先在数据库种子:
//
//	INSERT INTO users (email, password, nickname, role) VALUES (...)
//
// 账号密码通过环境变量FRESHMART_TEST_ADMIN_EMAIL/FRESHMART_TEST_ADMIN_PASSWORD
// 指定,未配置或登录失败时跳过相关用例
func LoginAdmin(t *testing.T) string {
	t.Helper()

	email := os.Getenv("FRESHMART_TEST_ADMIN_EMAIL")
	password := os.Getenv("FRESHMART_TEST_ADMIN_PASSWORD")
	if email == "" {
		email = "admin@freshmart.local"
	}
	if password == "" {
		password = "Admin1234"
	}

	loginReq := map[string]string{
		"email":    email,
		"password": password,
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	if loginResp.Code != 0 {
		t.Skipf("管理员账号不可用(需要预先种子),跳过: %s", loginResp.Message)
	}

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return loginData.AccessToken
}

// CreateTestProduct 创建测试商品并返回商品ID(管理员操作)
func CreateTestProduct(t *testing.T, adminToken string, name string, price int64) uint {
	t.Helper()

	productReq := map[string]interface{}{
		"sku":      GenerateTestSKU(),
		"name":     name,
		"category": "测试品类",
		"unit":     "份",
		"price":    price,
	}

	resp := PostJSON(t, BaseURL+"/admin/products", productReq, adminToken)
	require.Equal(t, 0, resp.Code, "创建商品失败: %s", resp.Message)

	var productData ProductData
	err := json.Unmarshal(resp.Data, &productData)
	require.NoError(t, err, "解析商品响应失败")

	return productData.ID
}

// CreateTestSupplier 创建测试供应商并返回ID(管理员操作)
func CreateTestSupplier(t *testing.T, adminToken string) uint {
	t.Helper()

	supplierReq := map[string]interface{}{
		"name":    fmt.Sprintf("测试供应商_%d", time.Now().UnixNano()),
		"contact": "张三",
		"phone":   "13800000000",
	}

	resp := PostJSON(t, BaseURL+"/admin/suppliers", supplierReq, adminToken)
	require.Equal(t, 0, resp.Code, "创建供应商失败: %s", resp.Message)

	var supplierData SupplierData
	err := json.Unmarshal(resp.Data, &supplierData)
	require.NoError(t, err, "解析供应商响应失败")

	return supplierData.ID
}

// ReceiveTestBatch 入库创建批次并返回批次ID(管理员操作)
// expiryInDays为距今天数,1表示明天到期
func ReceiveTestBatch(t *testing.T, adminToken string, productID, supplierID uint, quantity, expiryInDays int) uint {
	t.Helper()

	batchReq := map[string]interface{}{
		"product_id":  productID,
		"supplier_id": supplierID,
		"quantity":    quantity,
		"expiry_date": time.Now().AddDate(0, 0, expiryInDays).Format("2006-01-02"),
		"cost_price":  100,
	}

	resp := PostJSON(t, BaseURL+"/admin/batches", batchReq, adminToken)
	require.Equal(t, 0, resp.Code, "入库失败: %s", resp.Message)

	var batchData BatchData
	err := json.Unmarshal(resp.Data, &batchData)
	require.NoError(t, err, "解析批次响应失败")

	return batchData.ID
}
