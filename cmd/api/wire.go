//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewUserRepository）
// - Injector: 声明最终要构造的目标类型（如*gin.Engine）
// - wire.Build(): 告诉Wire如何组装依赖链

package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbatch "github.com/xiebiao/freshmart/internal/application/batch"
	appcart "github.com/xiebiao/freshmart/internal/application/cart"
	apporder "github.com/xiebiao/freshmart/internal/application/order"
	appproduct "github.com/xiebiao/freshmart/internal/application/product"
	"github.com/xiebiao/freshmart/internal/application/stockalert"
	appsupplier "github.com/xiebiao/freshmart/internal/application/supplier"
	appuser "github.com/xiebiao/freshmart/internal/application/user"
	"github.com/xiebiao/freshmart/internal/domain/batch"
	"github.com/xiebiao/freshmart/internal/domain/cart"
	"github.com/xiebiao/freshmart/internal/domain/product"
	"github.com/xiebiao/freshmart/internal/domain/user"
	"github.com/xiebiao/freshmart/internal/infrastructure/config"
	"github.com/xiebiao/freshmart/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/freshmart/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/freshmart/internal/interface/http/handler"
	"github.com/xiebiao/freshmart/internal/interface/http/middleware"
	"github.com/xiebiao/freshmart/pkg/circuitbreaker"
	"github.com/xiebiao/freshmart/pkg/jwt"
	"github.com/xiebiao/freshmart/pkg/metrics"
	"github.com/xiebiao/freshmart/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、数据库连接、Redis连接
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,     // 用户仓储
	mysql.NewProductRepository,  // 商品仓储
	mysql.NewSupplierRepository, // 供应商仓储
	mysql.NewBatchRepository,    // 批次仓储
	mysql.NewOrderRepository,    // 订单仓储
	mysql.NewTxManager,          // 事务管理器
)

// domainSet 领域层依赖
// 台账和监控器存在构造顺序约束,用自定义Provider组装
var domainSet = wire.NewSet(
	user.NewService,    // 用户领域服务
	product.NewService, // 商品领域服务
	provideNotifier,    // 告警通知器（MQ,连不上时降级为日志）
	provideAlertBreaker,
	provideMonitor, // 低库存监控器
	provideLedger,  // 批次台账
	batch.NewAllocator,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appproduct.NewListProductsUseCase,
	appproduct.NewGetProductUseCase,
	appproduct.NewManageProductUseCase,
	provideProductStockReader, // 商品列表的可售量读取
	appsupplier.NewManageSuppliersUseCase,
	appbatch.NewReceiveStockUseCase,
	appbatch.NewGetBatchUseCase,
	appbatch.NewListBatchesUseCase,
	appbatch.NewAdjustBatchUseCase,
	appbatch.NewDeleteBatchUseCase,
	appcart.NewCartUseCase,
	provideCartStockReader, // 购物车加购时的库存软校验
	apporder.NewCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewTransitionOrderUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	provideSessionStore,          // Session存储
	provideCartStore,             // 购物车存储
	provideLatchStore,            // 告警锁存器
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewProductHandler,
	handler.NewSupplierHandler,
	handler.NewBatchHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 有些依赖的构造函数参数不是直接的类型，需要从Config中提取；
// 接口到接口的适配（如batch.Repository → stockalert.StockReader）
// Wire无法自动推导，也需要手写Provider

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideCartStore 从Redis客户端创建购物车存储
func provideCartStore(client *goredis.Client) cart.Store {
	return redis.NewCartStore(client)
}

// provideLatchStore 从Redis客户端创建告警锁存器
func provideLatchStore(client *goredis.Client) stockalert.Latch {
	return redis.NewLatchStore(client)
}

// provideNotifier 创建告警通知器
// MQ不可用时降级为日志告警,不阻塞应用启动
func provideNotifier(cfg *config.Config) stockalert.Notifier {
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("连接RabbitMQ失败,低库存告警降级为日志输出: %v", err)
		return stockalert.NewLogNotifier()
	}
	return stockalert.NewMQNotifier(publisher)
}

// provideAlertBreaker 告警链路的熔断器
func provideAlertBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("low-stock-notifier", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// provideMonitor 创建低库存监控器
// 监控器直接读批次仓储:台账构造时需要注入观察者,不能反向依赖台账
func provideMonitor(
	batchRepo batch.Repository,
	productRepo product.Repository,
	latch stockalert.Latch,
	notifier stockalert.Notifier,
	breaker *circuitbreaker.CircuitBreaker,
	cfg *config.Config,
) *stockalert.Monitor {
	return stockalert.NewMonitor(
		batchRepo,
		productRepo,
		latch,
		notifier,
		breaker,
		cfg.Inventory.DefaultLowStockThreshold,
		cfg.Inventory.AlertDispatchTimeout,
	)
}

// provideLedger 创建批次台账（监控器作为变更观察者注入）
func provideLedger(repo batch.Repository, monitor *stockalert.Monitor) batch.Ledger {
	return batch.NewLedger(repo, monitor)
}

// provideProductStockReader 商品侧的可售量读取适配
func provideProductStockReader(repo batch.Repository) appproduct.StockReader {
	return repo
}

// provideCartStockReader 购物车侧的可售量读取适配
func provideCartStockReader(repo batch.Repository) appcart.StockReader {
	return repo
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册复用main.go的registerRoutes,保证两种组装方式的路由一致
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	supplierHandler *handler.SupplierHandler,
	batchHandler *handler.BatchHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.InitMetrics()

	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, productHandler, supplierHandler, batchHandler, cartHandler, orderHandler, authMiddleware)

	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
//
// wire.Build() 告诉Wire需要哪些Provider来构建*gin.Engine
// Wire会在编译期分析依赖关系，按正确顺序生成所有构造调用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	// 返回值是占位符，实际代码由wire生成到wire_gen.go
	return nil, nil
}
