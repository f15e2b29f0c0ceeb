package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/freshmart/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			// 使用UTC+8时间（配合MySQL的TZ=Asia/Shanghai）
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&SupplierModel{},
		&BatchModel{},
		&OrderModel{},
		&OrderLineModel{},
		&AllocationModel{},
		&StatusHistoryModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色(customer/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. SKU有唯一索引,防止重复
// 3. 不存库存数量——可售量是批次台账的派生值
type ProductModel struct {
	ID                uint           `gorm:"primaryKey"`
	SKU               string         `gorm:"uniqueIndex;size:32;not null;comment:商品编码"`
	Name              string         `gorm:"index:idx_search;size:200;not null;comment:商品名称"` // 搜索索引
	Category          string         `gorm:"index;size:50;comment:品类"`
	Unit              string         `gorm:"size:20;comment:计量单位"`
	Price             int64          `gorm:"index:idx_list;not null;comment:售价(分)"` // 排序索引
	Description       string         `gorm:"type:text;comment:商品描述"`
	ImageURL          string         `gorm:"size:500;comment:商品图片URL"`
	LowStockThreshold int            `gorm:"default:0;comment:低库存告警阈值(0=全局默认)"`
	CreatedAt         time.Time      `gorm:"index:idx_list;comment:创建时间"` // 排序索引
	UpdatedAt         time.Time      `gorm:"comment:更新时间"`
	DeletedAt         gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// SupplierModel GORM供应商模型
type SupplierModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:100;not null;comment:供应商名称"`
	Contact   string         `gorm:"size:50;comment:联系人"`
	Phone     string         `gorm:"size:20;comment:联系电话"`
	Address   string         `gorm:"size:200;comment:地址"`
	Active    bool           `gorm:"default:true;comment:是否启用"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (SupplierModel) TableName() string {
	return "suppliers"
}

// BatchModel GORM库存批次模型
// 教学要点:
// 1. 不存储状态列——expired/exhausted是查询时按expiry_date和
//    quantity_remaining派生的,不需要定时任务刷状态
// 2. expiry_date使用DATE类型(日历日期语义,批次在到期日当天仍可售)
// 3. 复合索引(product_id, expiry_date)服务FEFO查询
type BatchModel struct {
	ID                uint           `gorm:"primaryKey"`
	ProductID         uint           `gorm:"index:idx_fefo,priority:1;not null;comment:商品ID"`
	SupplierID        uint           `gorm:"index;not null;comment:供应商ID"`
	QuantityReceived  int            `gorm:"not null;comment:入库数量"`
	QuantityRemaining int            `gorm:"not null;comment:剩余数量"`
	ExpiryDate        time.Time      `gorm:"index:idx_fefo,priority:2;type:date;not null;comment:保质期"`
	CostPrice         int64          `gorm:"not null;comment:进货单价(分)"`
	ReceivedAt        time.Time      `gorm:"not null;comment:入库时间"`
	CreatedAt         time.Time      `gorm:"comment:创建时间"`
	UpdatedAt         time.Time      `gorm:"comment:更新时间"`
	DeletedAt         gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BatchModel) TableName() string {
	return "stock_batches"
}

// OrderModel GORM订单模型
// 教学要点:
// 1. 与OrderLineModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(节省空间,便于索引;CAS更新的WHERE条件列)
type OrderModel struct {
	ID        uint             `gorm:"primaryKey"`
	OrderNo   string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID    uint             `gorm:"index;not null;comment:买家用户ID"`
	Total     int64            `gorm:"not null;comment:订单总金额(分)"`
	Status    int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1待处理2处理中3已发货4已送达5已取消)"`
	Lines     []OrderLineModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel GORM订单行模型
// 教学要点:
// 1. 记录下单时的价格快照(Price字段)
// 2. 与AllocationModel是一对多关系(每行可能消耗多个批次)
type OrderLineModel struct {
	ID          uint              `gorm:"primaryKey"`
	OrderID     uint              `gorm:"index;not null;comment:订单ID"`
	ProductID   uint              `gorm:"index;not null;comment:商品ID"`
	Quantity    int               `gorm:"not null;comment:购买数量"`
	Price       int64             `gorm:"not null;comment:下单时单价(分)"`
	Allocations []AllocationModel `gorm:"foreignKey:LineID"` // 一对多关联
}

// TableName 指定表名
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// AllocationModel GORM批次分配模型
// 订单行与批次的消耗关系:取消订单时按此记录逐批回补
type AllocationModel struct {
	ID       uint `gorm:"primaryKey"`
	LineID   uint `gorm:"index;not null;comment:订单行ID"`
	BatchID  uint `gorm:"index;not null;comment:批次ID"`
	QtyTaken int  `gorm:"not null;comment:扣减数量"`
}

// TableName 指定表名
func (AllocationModel) TableName() string {
	return "order_allocations"
}

// StatusHistoryModel GORM订单状态审计模型
// 每次状态流转追加一条,订单生命周期可完整回放
type StatusHistoryModel struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   uint      `gorm:"index;not null;comment:订单ID"`
	FromState int       `gorm:"type:tinyint;comment:来源状态(0=创建)"`
	ToState   int       `gorm:"type:tinyint;not null;comment:目标状态"`
	ActorID   uint      `gorm:"comment:操作者用户ID"`
	CreatedAt time.Time `gorm:"comment:流转时间"`
}

// TableName 指定表名
func (StatusHistoryModel) TableName() string {
	return "order_status_history"
}
