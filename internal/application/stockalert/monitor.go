package stockalert

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xiebiao/freshmart/internal/domain/batch"
	"github.com/xiebiao/freshmart/internal/domain/product"
	"github.com/xiebiao/freshmart/pkg/circuitbreaker"
	"github.com/xiebiao/freshmart/pkg/metrics"
)

// Alert 低库存告警事件
type Alert struct {
	ProductID   uint      `json:"product_id"`
	ProductName string    `json:"product_name"`
	Remaining   int       `json:"remaining"` // 触发时的可分配总量
	Threshold   int       `json:"threshold"` // 生效的告警阈值
	At          time.Time `json:"at"`
}

// Notifier 告警通知出口
// 由MQ发布器适配实现,测试时用内存Fake
type Notifier interface {
	NotifyLowStock(ctx context.Context, alert *Alert) error
}

// Latch 告警锁存器
// 设计说明:边沿触发的核心——每个"跌破阈值的区间"只告警一次,
// 区间内的后续下跌保持静默,回到阈值之上时清除锁存,允许下次再告警
type Latch interface {
	// TrySet 尝试置位,返回true表示本次是新置位(应当告警)
	TrySet(ctx context.Context, productID uint) (bool, error)

	// Clear 清除锁存(库存回到阈值之上)
	Clear(ctx context.Context, productID uint) error
}

// StockReader 可分配总量读取接口(由批次仓储实现)
// 说明:这里不依赖完整的Ledger——Ledger构造时需要注入观察者,
// 监控器若依赖Ledger会形成构造环
type StockReader interface {
	TotalRemaining(ctx context.Context, productID uint) (int, error)
}

// Monitor 低库存监控器
// 实现batch.MutationObserver:台账每次库存变更后被同步回调
// 教学要点:
// 1. 阈值判断在调用方goroutine内完成(两次读,开销可控)
// 2. 告警派发走独立goroutine+超时,绝不阻塞库存路径
// 3. 派发失败只记日志——库存操作的成败永远不受通知影响
type Monitor struct {
	stock            StockReader
	products         product.Repository
	latch            Latch
	notifier         Notifier
	breaker          *circuitbreaker.CircuitBreaker // 可为nil(测试场景)
	defaultThreshold int
	dispatchTimeout  time.Duration

	wg sync.WaitGroup
}

var _ batch.MutationObserver = (*Monitor)(nil)

// NewMonitor 创建低库存监控器
// defaultThreshold<=0表示全局关闭监控(商品单独配置的阈值仍然生效)
func NewMonitor(stock StockReader, products product.Repository, latch Latch, notifier Notifier, breaker *circuitbreaker.CircuitBreaker, defaultThreshold int, dispatchTimeout time.Duration) *Monitor {
	if dispatchTimeout <= 0 {
		dispatchTimeout = 3 * time.Second
	}
	return &Monitor{
		stock:            stock,
		products:         products,
		latch:            latch,
		notifier:         notifier,
		breaker:          breaker,
		defaultThreshold: defaultThreshold,
		dispatchTimeout:  dispatchTimeout,
	}
}

// OnStockMutated 台账库存变更回调
// 流程:读总量 → 取阈值 → 阈值之上清锁存 / 之下边沿触发告警
func (m *Monitor) OnStockMutated(ctx context.Context, productID uint) {
	total, err := m.stock.TotalRemaining(ctx, productID)
	if err != nil {
		log.Printf("低库存监控: 读取商品%d总量失败: %v", productID, err)
		return
	}

	p, err := m.products.FindByID(ctx, productID)
	if err != nil {
		// 批次可能先于商品档案创建,或商品已删除,静默跳过
		return
	}

	threshold := p.EffectiveThreshold(m.defaultThreshold)
	if threshold <= 0 {
		return
	}

	// 回到阈值之上:清除锁存,下次跌破重新告警
	if total >= threshold {
		if err := m.latch.Clear(ctx, productID); err != nil {
			log.Printf("低库存监控: 清除商品%d锁存失败: %v", productID, err)
		}
		return
	}

	// 跌破阈值:只有"新置位"才告警(边沿触发)
	newly, err := m.latch.TrySet(ctx, productID)
	if err != nil {
		log.Printf("低库存监控: 置位商品%d锁存失败: %v", productID, err)
		return
	}
	if !newly {
		return
	}

	alert := &Alert{
		ProductID:   productID,
		ProductName: p.Name,
		Remaining:   total,
		Threshold:   threshold,
		At:          time.Now(),
	}

	// 异步派发:不持有台账锁,不阻塞库存路径
	m.wg.Add(1)
	go m.dispatch(alert)
}

// dispatch 派发告警(独立goroutine)
// 使用Background派生超时context——请求context可能已随HTTP响应取消
func (m *Monitor) dispatch(alert *Alert) {
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), m.dispatchTimeout)
	defer cancel()

	send := func() error {
		return m.notifier.NotifyLowStock(ctx, alert)
	}

	var err error
	if m.breaker != nil {
		err = m.breaker.Execute(send)
	} else {
		err = send()
	}

	if err != nil {
		// 锁存保持置位:同一低库存区间不重发,等待补货后的下一次跌破
		log.Printf("低库存告警派发失败: 商品%d 余量%d/阈值%d: %v",
			alert.ProductID, alert.Remaining, alert.Threshold, err)
		return
	}

	// 指标未初始化时跳过(测试场景)
	if metrics.LowStockAlertsTotal != nil {
		metrics.LowStockAlertsTotal.Inc()
	}
}

// Wait 等待所有在途告警派发完成(优雅停机/测试用)
func (m *Monitor) Wait() {
	m.wg.Wait()
}
