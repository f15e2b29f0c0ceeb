package cart

import (
	"context"
)

// Store 购物车存储接口(依赖倒置原则)
// 设计说明:
// 1. 购物车不进MySQL——高频小写、允许丢失、天然带过期,典型Redis场景
// 2. Get查不到时返回空购物车而非NotFound,简化调用方逻辑
type Store interface {
	// Get 读取用户购物车,不存在时返回空购物车
	Get(ctx context.Context, userID uint) (*Cart, error)

	// Save 整体保存购物车(覆盖写,带TTL续期)
	Save(ctx context.Context, cart *Cart) error

	// Delete 删除购物车(下单成功后清空)
	Delete(ctx context.Context, userID uint) error
}
