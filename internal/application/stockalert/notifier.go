package stockalert

import (
	"context"
	"log"

	"github.com/xiebiao/freshmart/pkg/mq"
)

// RoutingKeyLowStock 低库存告警事件的路由键
const RoutingKeyLowStock = "inventory.low_stock"

// MQNotifier 基于RabbitMQ的告警通知器
// 告警进入消息队列后由独立的通知消费者处理(邮件/企业微信),
// 库存服务不关心最终送达方式
type MQNotifier struct {
	publisher *mq.Publisher
}

// NewMQNotifier 创建MQ告警通知器
func NewMQNotifier(publisher *mq.Publisher) *MQNotifier {
	return &MQNotifier{publisher: publisher}
}

// NotifyLowStock 发布低库存告警事件
func (n *MQNotifier) NotifyLowStock(ctx context.Context, alert *Alert) error {
	return n.publisher.Publish(RoutingKeyLowStock, alert)
}

// LogNotifier 日志告警通知器
// MQ不可用时的降级出口:告警只写日志,库存路径照常工作
type LogNotifier struct{}

// NewLogNotifier 创建日志告警通知器
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyLowStock 将告警写入日志
func (n *LogNotifier) NotifyLowStock(ctx context.Context, alert *Alert) error {
	log.Printf("⚠️ 低库存告警: 商品%d 余量%d/阈值%d", alert.ProductID, alert.Remaining, alert.Threshold)
	return nil
}
