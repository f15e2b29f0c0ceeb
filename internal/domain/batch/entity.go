package batch

import (
	"sort"
	"time"
)

// BatchStatus 批次状态
// 设计说明:
// 1. 状态是"派生值",由expiry_date与quantity_remaining在读取时计算
// 2. 绝不落库存储(避免与字段脱节的脏标志)
// 3. expired优先于exhausted:过期批次即使有余量也不可用
type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "active"    // 可分配(未过期且有余量)
	BatchStatusExpired   BatchStatus = "expired"   // 已过期
	BatchStatusExhausted BatchStatus = "exhausted" // 已耗尽(余量为0)
)

// IsValid 检查状态值是否合法
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusActive, BatchStatusExpired, BatchStatusExhausted:
		return true
	}
	return false
}

// ParseBatchStatus 解析状态字符串(路由参数使用)
func ParseBatchStatus(s string) (BatchStatus, error) {
	status := BatchStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Batch 库存批次实体(聚合根)
// DDD设计说明:
// 1. Batch是批次台账的聚合根,同一商品的库存由多个批次构成
// 2. 成本价使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ExpiryDate是日历日期,创建后不可变更
// 4. 订单分配记录中只保存BatchID,不嵌入Batch对象(台账是批次的唯一属主)
type Batch struct {
	ID                uint
	ProductID         uint      // 所属商品ID
	SupplierID        uint      // 供货供应商ID
	QuantityReceived  int       // 入库数量(不可变)
	QuantityRemaining int       // 剩余数量(0 ≤ remaining ≤ received)
	ExpiryDate        time.Time // 保质期截止日期(日历日期,不可变)
	ReceivedAt        time.Time // 入库时间(FEFO同日到期时的次级排序依据)
	CostPrice         int64     // 进货单价(分)
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewBatch 创建新批次(工厂方法)
// 参数校验(数量>0、保质期未过期)由Ledger服务完成
func NewBatch(productID, supplierID uint, quantity int, expiryDate time.Time, costPrice int64) *Batch {
	now := time.Now()
	return &Batch{
		ProductID:         productID,
		SupplierID:        supplierID,
		QuantityReceived:  quantity,
		QuantityRemaining: quantity,
		ExpiryDate:        dateOf(expiryDate),
		ReceivedAt:        now,
		CostPrice:         costPrice,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsExpired 是否已过期(派生谓词)
// 日历日期语义:批次在保质期当天仍然可用,次日起过期
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiryDate.Before(dateOf(now))
}

// IsExhausted 是否已耗尽(派生谓词)
func (b *Batch) IsExhausted() bool {
	return b.QuantityRemaining == 0
}

// IsEligible 是否可参与分配(未过期且未耗尽)
func (b *Batch) IsEligible(now time.Time) bool {
	return !b.IsExpired(now) && !b.IsExhausted()
}

// IsUntouched 是否从未被消耗(删除批次的前置条件)
func (b *Batch) IsUntouched() bool {
	return b.QuantityRemaining == b.QuantityReceived
}

// Status 计算批次状态(读取时派生,绝不缓存)
func (b *Batch) Status(now time.Time) BatchStatus {
	switch {
	case b.IsExpired(now):
		return BatchStatusExpired
	case b.IsExhausted():
		return BatchStatusExhausted
	default:
		return BatchStatusActive
	}
}

// CanAdjust 校验余量调整是否合法
// 业务规则:
// - 负delta(消耗)不能使余量为负 → ErrInsufficientRemaining
// - 正delta(补偿/回滚)不能超过入库数量 → ErrExceedsReceived
func (b *Batch) CanAdjust(delta int) error {
	next := b.QuantityRemaining + delta
	if next < 0 {
		return ErrInsufficientRemaining
	}
	if next > b.QuantityReceived {
		return ErrExceedsReceived
	}
	return nil
}

// Adjust 调整余量(领域行为)
// 必须先通过CanAdjust校验;并发安全由Repository的原子更新保证
func (b *Batch) Adjust(delta int) error {
	if err := b.CanAdjust(delta); err != nil {
		return err
	}
	b.QuantityRemaining += delta
	b.UpdatedAt = time.Now()
	return nil
}

// SortFEFO 按FEFO(先到期先出)契约排序
// 排序规则:expiry_date升序 → received_at升序(最早入库优先) → id升序(兜底保证确定性)
// 分配引擎依赖此顺序,不要改动
func SortFEFO(batches []*Batch) {
	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].ExpiryDate.Equal(batches[j].ExpiryDate) {
			return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
		}
		if !batches[i].ReceivedAt.Equal(batches[j].ReceivedAt) {
			return batches[i].ReceivedAt.Before(batches[j].ReceivedAt)
		}
		return batches[i].ID < batches[j].ID
	})
}

// dateOf 截断到日历日期(本地时区零点)
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
