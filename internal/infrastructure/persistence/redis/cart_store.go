package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/freshmart/internal/domain/cart"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// cartTTL 购物车过期时间
// 7天不操作自动清空(生鲜场景,过期购物车没有保留价值)
const cartTTL = 7 * 24 * time.Hour

// CartStore 购物车存储(Redis实现)
// 设计说明:
// 1. 整车JSON覆盖写——购物车体量小(几十行封顶),整存整取
//    比Hash逐字段操作简单,且天然保证读到的是一致快照
// 2. 每次Save都续期TTL(活跃购物车不过期)
// 3. Get查不到返回空购物车,见domain/cart/store.go的契约
type CartStore struct {
	client *redis.Client
}

// NewCartStore 创建购物车存储
func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

var _ cart.Store = (*CartStore)(nil)

// Get 读取用户购物车,不存在时返回空购物车
func (s *CartStore) Get(ctx context.Context, userID uint) (*cart.Cart, error) {
	key := cartKey(userID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cart.NewCart(userID), nil
		}
		return nil, apperrors.Wrap(err, "读取购物车失败")
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		// 数据损坏按空购物车处理(购物车允许丢失,不值得让用户卡死)
		return cart.NewCart(userID), nil
	}
	return &c, nil
}

// Save 整体保存购物车(覆盖写,带TTL续期)
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return apperrors.Wrap(err, "序列化购物车失败")
	}

	if err := s.client.Set(ctx, cartKey(c.UserID), data, cartTTL).Err(); err != nil {
		return apperrors.Wrap(err, "保存购物车失败")
	}
	return nil
}

// Delete 删除购物车(下单成功后清空)
func (s *CartStore) Delete(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "删除购物车失败")
	}
	return nil
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}
