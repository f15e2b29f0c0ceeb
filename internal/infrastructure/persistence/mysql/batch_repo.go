package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/freshmart/internal/domain/batch"
	apperrors "github.com/xiebiao/freshmart/pkg/errors"
)

// batchRepository 批次仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/batch/repository.go定义的接口
// 2. 余量调整使用受保护的原子UPDATE(每批次串行化的数据库层保证)
// 3. 批次状态不落库,全部查询按expiry_date/quantity_remaining派生
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建批次仓储
func NewBatchRepository(db *gorm.DB) batch.Repository {
	return &batchRepository{db: db}
}

// today 今天的日历日期(DATE列比较用)
func today() string {
	return time.Now().Format("2006-01-02")
}

// Create 创建批次
func (r *batchRepository) Create(ctx context.Context, b *batch.Batch) error {
	model := &BatchModel{
		ProductID:         b.ProductID,
		SupplierID:        b.SupplierID,
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		ExpiryDate:        b.ExpiryDate,
		CostPrice:         b.CostPrice,
		ReceivedAt:        b.ReceivedAt,
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建批次失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找批次
func (r *batchRepository) FindByID(ctx context.Context, id uint) (*batch.Batch, error) {
	var model BatchModel
	db := r.getDB(ctx)
	if err := db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, batch.ErrBatchNotFound
		}
		return nil, apperrors.Wrap(err, "查询批次失败")
	}
	return toBatchEntity(&model), nil
}

// ActiveBatches 商品的可分配批次(FEFO顺序)
// 可分配 = 未过期(日历日期,到期日当天仍可售) 且 余量>0
func (r *batchRepository) ActiveBatches(ctx context.Context, productID uint) ([]*batch.Batch, error) {
	var models []BatchModel
	db := r.getDB(ctx)
	err := db.
		Where("product_id = ? AND expiry_date >= ? AND quantity_remaining > 0", productID, today()).
		Order("expiry_date ASC, received_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询可分配批次失败")
	}
	return toBatchEntities(models), nil
}

// LockActiveBatches 锁定商品的可分配批次
// 教学要点:
// 1. SELECT FOR UPDATE必须在事务内调用(getDB从context取事务DB)
// 2. ORDER BY id保证所有事务按同一顺序加锁——
//    两个并发分配即使FEFO消耗顺序不同,加锁顺序也一致,不会互相死锁
// 3. 返回顺序是ID序,FEFO排序由调用方(分配引擎)在内存完成
func (r *batchRepository) LockActiveBatches(ctx context.Context, productID uint) ([]*batch.Batch, error) {
	var models []BatchModel
	db := r.getDB(ctx)
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND expiry_date >= ? AND quantity_remaining > 0", productID, today()).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定批次失败")
	}
	return toBatchEntities(models), nil
}

// AdjustRemaining 原子调整批次余量
// 教学要点:防止并发调整丢失更新
//
// UPDATE stock_batches
//   SET quantity_remaining = quantity_remaining + ?
// WHERE id = ?
//   AND quantity_remaining + ? >= 0                    -- 不许为负
//   AND quantity_remaining + ? <= quantity_received    -- 不许超入库量
//
// 条件不满足时RowsAffected=0,再查一次区分具体原因:
// 批次不存在 / 余量不足 / 超过入库量
func (r *batchRepository) AdjustRemaining(ctx context.Context, batchID uint, delta int) (*batch.Batch, error) {
	db := r.getDB(ctx)
	result := db.Model(&BatchModel{}).
		Where("id = ?", batchID).
		Where("quantity_remaining + ? >= 0", delta).
		Where("quantity_remaining + ? <= quantity_received", delta).
		Update("quantity_remaining", gorm.Expr("quantity_remaining + ?", delta))

	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "调整批次余量失败")
	}

	if result.RowsAffected == 0 {
		// 区分失败原因
		current, err := r.FindByID(ctx, batchID)
		if err != nil {
			return nil, err
		}
		// 用领域实体的边界校验给出精确错误
		if err := current.CanAdjust(delta); err != nil {
			return nil, err
		}
		// 校验通过但UPDATE没命中:并发修改的竞态窗口,按冲突处理
		return nil, batch.ErrAdjustConflict
	}

	return r.FindByID(ctx, batchID)
}

// Delete 删除批次(软删除)
// 条件删除:只删"从未出库"的批次(余量==入库量),与并发出库互斥
func (r *batchRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	result := db.
		Where("id = ? AND quantity_remaining = quantity_received", id).
		Delete(&BatchModel{})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除批次失败")
	}

	if result.RowsAffected == 0 {
		// 批次不存在,或已有出库记录
		var model BatchModel
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return batch.ErrBatchNotFound
			}
			return apperrors.Wrap(err, "查询批次失败")
		}
		return batch.ErrBatchTouched
	}

	return nil
}

// ListByProduct 分页查询商品批次(FEFO顺序)
func (r *batchRepository) ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*batch.Batch, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&BatchModel{}).Where("product_id = ?", productID)
	return r.paginate(query, page, pageSize)
}

// ListByStatus 按派生状态分页查询
// 状态是查询条件而非存储列:
// - active:    expiry_date >= 今天 AND quantity_remaining > 0
// - expired:   expiry_date <  今天(expired优先,不看余量)
// - exhausted: expiry_date >= 今天 AND quantity_remaining = 0
func (r *batchRepository) ListByStatus(ctx context.Context, status batch.BatchStatus, page, pageSize int) ([]*batch.Batch, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&BatchModel{})

	switch status {
	case batch.BatchStatusActive:
		query = query.Where("expiry_date >= ? AND quantity_remaining > 0", today())
	case batch.BatchStatusExpired:
		query = query.Where("expiry_date < ?", today())
	case batch.BatchStatusExhausted:
		query = query.Where("expiry_date >= ? AND quantity_remaining = 0", today())
	default:
		return nil, 0, batch.ErrInvalidStatus
	}

	return r.paginate(query, page, pageSize)
}

// TotalRemaining 商品可分配总量(未过期批次余量之和)
func (r *batchRepository) TotalRemaining(ctx context.Context, productID uint) (int, error) {
	var total int64
	db := r.getDB(ctx)
	err := db.Model(&BatchModel{}).
		Where("product_id = ? AND expiry_date >= ?", productID, today()).
		Select("COALESCE(SUM(quantity_remaining), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计可分配总量失败")
	}
	return int(total), nil
}

// paginate 统一的分页查询(FEFO顺序)
func (r *batchRepository) paginate(query *gorm.DB, page, pageSize int) ([]*batch.Batch, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次总数失败")
	}

	var models []BatchModel
	offset := (page - 1) * pageSize
	err := query.
		Order("expiry_date ASC, received_at ASC, id ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询批次列表失败")
	}

	return toBatchEntities(models), total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBatchEntity GORM模型 → 领域实体
func toBatchEntity(model *BatchModel) *batch.Batch {
	return &batch.Batch{
		ID:                model.ID,
		ProductID:         model.ProductID,
		SupplierID:        model.SupplierID,
		QuantityReceived:  model.QuantityReceived,
		QuantityRemaining: model.QuantityRemaining,
		ExpiryDate:        model.ExpiryDate,
		CostPrice:         model.CostPrice,
		ReceivedAt:        model.ReceivedAt,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func toBatchEntities(models []BatchModel) []*batch.Batch {
	batches := make([]*batch.Batch, len(models))
	for i := range models {
		batches[i] = toBatchEntity(&models[i])
	}
	return batches
}

// getDB 从context获取事务DB,如果没有则使用默认DB
// 教学要点:事务传递机制
func (r *batchRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
