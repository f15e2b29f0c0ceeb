package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/freshmart/internal/application/stockalert"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// LatchStore 低库存告警锁存(Redis实现)
// 教学要点:
// 1. SETNX天然就是"边缘触发"语义:第一个置位者返回true(发告警),
//    后续置位者返回false(静默)——多实例部署时也只发一次
// 2. 不设TTL:锁存的清除由库存回补事件驱动(Clear),
//    而不是时间驱动——库存不补,告警不重发
type LatchStore struct {
	client *redis.Client
}

// NewLatchStore 创建告警锁存
func NewLatchStore(client *redis.Client) *LatchStore {
	return &LatchStore{client: client}
}

var _ stockalert.Latch = (*LatchStore)(nil)

// TrySet 尝试置位,返回true表示本次是新置位(应当告警)
func (s *LatchStore) TrySet(ctx context.Context, productID uint) (bool, error) {
	ok, err := s.client.SetNX(ctx, latchKey(productID), "1", 0).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "置位告警锁存失败")
	}
	return ok, nil
}

// Clear 清除锁存(库存回到阈值之上)
func (s *LatchStore) Clear(ctx context.Context, productID uint) error {
	if err := s.client.Del(ctx, latchKey(productID)).Err(); err != nil {
		return apperrors.Wrap(err, "清除告警锁存失败")
	}
	return nil
}

func latchKey(productID uint) string {
	return fmt.Sprintf("lowstock:latch:%d", productID)
}
