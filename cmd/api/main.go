package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbatch "github.com/xiebiao/freshmart/internal/application/batch"
	appcart "github.com/xiebiao/freshmart/internal/application/cart"
	apporder "github.com/xiebiao/freshmart/internal/application/order"
	appproduct "github.com/xiebiao/freshmart/internal/application/product"
	"github.com/xiebiao/freshmart/internal/application/stockalert"
	appsupplier "github.com/xiebiao/freshmart/internal/application/supplier"
	appuser "github.com/xiebiao/freshmart/internal/application/user"
	"github.com/xiebiao/freshmart/internal/domain/batch"
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
	"github.com/xiebiao/freshmart/pkg/response"
	"github.com/xiebiao/freshmart/pkg/tracing"
)

// @title           freshmart API
// @version         1.0
// @description     生鲜商店服务:批次化库存台账 + FEFO订单分配
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     格式: Bearer {access_token}

// main 主程序入口
// 说明：手动依赖注入（cmd/api/wire.go提供Wire版本的等价组装）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化可观测性组件
	metrics.InitMetrics()

	if cfg.Tracing.Endpoint != "" {
		shutdown, err := tracing.InitTracer("freshmart-api", cfg.Tracing.Endpoint)
		if err != nil {
			log.Printf("初始化链路追踪失败(不影响启动): %v", err)
		} else {
			defer shutdown(context.Background())
			fmt.Printf("✓ 链路追踪已开启: %s\n", cfg.Tracing.Endpoint)
		}
	}

	// 5. 依赖注入（手动组装）
	// 依赖链: Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	supplierRepo := mysql.NewSupplierRepository(db)
	batchRepo := mysql.NewBatchRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	txManager := mysql.NewTxManager(db)

	sessionStore := redis.NewSessionStore(redisClient)
	cartStore := redis.NewCartStore(redisClient)
	latchStore := redis.NewLatchStore(redisClient)

	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 低库存告警链路: MQ不可用时降级为日志告警,库存路径不受影响
	var notifier stockalert.Notifier
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("连接RabbitMQ失败,低库存告警降级为日志输出: %v", err)
		notifier = stockalert.NewLogNotifier()
	} else {
		defer publisher.Close()
		notifier = stockalert.NewMQNotifier(publisher)
		fmt.Printf("✓ 消息队列已连接: exchange=%s\n", cfg.MQ.Exchange)
	}

	alertBreaker := circuitbreaker.NewCircuitBreaker("low-stock-notifier", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	// 监控器直接读批次仓储(台账构造时需要注入观察者,不能反向依赖台账)
	monitor := stockalert.NewMonitor(
		batchRepo,
		productRepo,
		latchStore,
		notifier,
		alertBreaker,
		cfg.Inventory.DefaultLowStockThreshold,
		cfg.Inventory.AlertDispatchTimeout,
	)

	// 领域层
	userService := user.NewService(userRepo)
	productService := product.NewService(productRepo)
	ledger := batch.NewLedger(batchRepo, monitor)
	allocator := batch.NewAllocator(ledger)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	listProductsUseCase := appproduct.NewListProductsUseCase(productService, batchRepo)
	getProductUseCase := appproduct.NewGetProductUseCase(productService, batchRepo)
	manageProductUseCase := appproduct.NewManageProductUseCase(productService)

	manageSuppliersUseCase := appsupplier.NewManageSuppliersUseCase(supplierRepo)

	receiveStockUseCase := appbatch.NewReceiveStockUseCase(ledger, productRepo, supplierRepo)
	getBatchUseCase := appbatch.NewGetBatchUseCase(ledger)
	listBatchesUseCase := appbatch.NewListBatchesUseCase(ledger)
	adjustBatchUseCase := appbatch.NewAdjustBatchUseCase(ledger)
	deleteBatchUseCase := appbatch.NewDeleteBatchUseCase(ledger)

	cartUseCase := appcart.NewCartUseCase(cartStore, productRepo, batchRepo)

	createOrderUseCase := apporder.NewCreateOrderUseCase(orderRepo, productRepo, cartStore, allocator, txManager)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)
	transitionOrderUseCase := apporder.NewTransitionOrderUseCase(orderRepo, allocator, txManager)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	productHandler := handler.NewProductHandler(listProductsUseCase, getProductUseCase, manageProductUseCase)
	supplierHandler := handler.NewSupplierHandler(manageSuppliersUseCase)
	batchHandler := handler.NewBatchHandler(receiveStockUseCase, getBatchUseCase, listBatchesUseCase, adjustBatchUseCase, deleteBatchUseCase)
	cartHandler := handler.NewCartHandler(cartUseCase)
	orderHandler := handler.NewOrderHandler(createOrderUseCase, getOrderUseCase, listOrdersUseCase, transitionOrderUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	// 7. 注册路由
	registerRoutes(r, userHandler, productHandler, supplierHandler, batchHandler, cartHandler, orderHandler, authMiddleware)

	// 8. 启动服务(优雅停机:等待在途请求与告警派发完成)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
		fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Printf("\n📤 正在停止服务...\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("停止HTTP服务失败: %v", err)
	}

	// 在途的低库存告警派发完成后再退出
	monitor.Wait()
	fmt.Printf("✅ 服务已停止\n")
}

// registerRoutes 注册路由
// 路由分三层:公开(商品浏览/注册登录)、需登录(购物车/订单)、管理端(/admin)
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	supplierHandler *handler.SupplierHandler,
	batchHandler *handler.BatchHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档（生产环境建议禁用或加访问控制）
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 商品模块（公开接口,带实时可售量）
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		// 需要登录的顾客接口
		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			// 个人信息
			authorized.GET("/profile", func(c *gin.Context) {
				response.Success(c, gin.H{
					"user_id":  middleware.GetUserID(c),
					"email":    middleware.GetEmail(c),
					"role":     string(middleware.GetRole(c)),
					"nickname": middleware.GetNickname(c),
				})
			})

			// 购物车
			cart := authorized.Group("/cart")
			{
				cart.GET("", cartHandler.Get)
				cart.DELETE("", cartHandler.Clear)
				cart.POST("/items", cartHandler.AddItem)
				cart.PUT("/items/:product_id", cartHandler.UpdateItem)
				cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
			}

			// 订单
			orders := authorized.Group("/orders")
			{
				orders.POST("", orderHandler.Create)
				orders.GET("", orderHandler.List)
				orders.GET("/:id", orderHandler.Get)
				orders.PATCH("/:id/status", orderHandler.UpdateStatus)
			}
		}

		// 管理端接口（需要admin角色）
		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", productHandler.Create)
				adminProducts.PUT("/:id", productHandler.UpdateInfo)
				adminProducts.PUT("/:id/price", productHandler.UpdatePrice)
				adminProducts.PUT("/:id/threshold", productHandler.UpdateThreshold)
				adminProducts.DELETE("/:id", productHandler.Delete)
			}

			suppliers := admin.Group("/suppliers")
			{
				suppliers.POST("", supplierHandler.Create)
				suppliers.GET("", supplierHandler.List)
				suppliers.GET("/:id", supplierHandler.Get)
				suppliers.PUT("/:id", supplierHandler.Update)
				suppliers.PUT("/:id/active", supplierHandler.SetActive)
			}

			batches := admin.Group("/batches")
			{
				batches.POST("", batchHandler.Receive)
				batches.GET("", batchHandler.List)
				batches.GET("/:id", batchHandler.Get)
				batches.POST("/:id/adjust", batchHandler.Adjust)
				batches.DELETE("/:id", batchHandler.Delete)
			}
		}
	}
}
