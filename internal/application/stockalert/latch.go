package stockalert

import (
	"context"
	"sync"
)

// MemoryLatch 进程内锁存器
// 单实例部署时可直接使用;多实例部署换用Redis实现
// (infrastructure/persistence/redis.LatchStore),否则每个实例各告警一次
type MemoryLatch struct {
	mu      sync.Mutex
	latched map[uint]bool
}

// NewMemoryLatch 创建进程内锁存器
func NewMemoryLatch() *MemoryLatch {
	return &MemoryLatch{latched: make(map[uint]bool)}
}

// TrySet 尝试置位
func (l *MemoryLatch) TrySet(ctx context.Context, productID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.latched[productID] {
		return false, nil
	}
	l.latched[productID] = true
	return true, nil
}

// Clear 清除锁存
func (l *MemoryLatch) Clear(ctx context.Context, productID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.latched, productID)
	return nil
}
