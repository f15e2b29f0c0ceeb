package product

import (
	"testing"
)

// TestProduct_EffectiveThreshold 测试阈值回退规则
// 商品单独配置>0时生效,否则使用全局默认
func TestProduct_EffectiveThreshold(t *testing.T) {
	p := &Product{LowStockThreshold: 0}
	if got := p.EffectiveThreshold(10); got != 10 {
		t.Errorf("未配置时应回退全局默认: %d, 期望 10", got)
	}

	p.LowStockThreshold = 5
	if got := p.EffectiveThreshold(10); got != 5 {
		t.Errorf("单独配置应优先: %d, 期望 5", got)
	}
}

// TestProduct_UpdatePrice 测试价格更新规则
func TestProduct_UpdatePrice(t *testing.T) {
	p := NewProduct("FRT-APL-001", "红富士苹果", "果蔬", "千克", 1280, "", "", 0)

	if err := p.UpdatePrice(0); err != ErrInvalidPrice {
		t.Errorf("价格为0: 期望ErrInvalidPrice, 实际 %v", err)
	}
	if err := p.UpdatePrice(1500); err != nil || p.Price != 1500 {
		t.Errorf("合法价格更新失败: %v", err)
	}
}

// TestProduct_UpdateThreshold 测试阈值更新规则
func TestProduct_UpdateThreshold(t *testing.T) {
	p := NewProduct("FRT-APL-001", "红富士苹果", "果蔬", "千克", 1280, "", "", 5)

	if err := p.UpdateThreshold(-1); err != ErrInvalidThreshold {
		t.Errorf("负阈值: 期望ErrInvalidThreshold, 实际 %v", err)
	}
	// 0表示恢复使用全局默认,是合法值
	if err := p.UpdateThreshold(0); err != nil || p.LowStockThreshold != 0 {
		t.Errorf("阈值归零失败: %v", err)
	}
}

// TestIsValidSKU 测试SKU格式校验
func TestIsValidSKU(t *testing.T) {
	cases := []struct {
		sku  string
		want bool
	}{
		{"FRT-APL-001", true},
		{"milk01", true},
		{"ab", false},          // 过短
		{"有中文的SKU", false},     // 非法字符
		{"FRT APL 001", false}, // 含空格
	}
	for _, tc := range cases {
		if got := isValidSKU(tc.sku); got != tc.want {
			t.Errorf("isValidSKU(%q) = %v, 期望 %v", tc.sku, got, tc.want)
		}
	}
}
