package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xiebiao/freshmart/internal/domain/batch"
	"github.com/xiebiao/freshmart/internal/domain/cart"
	"github.com/xiebiao/freshmart/internal/domain/order"
	"github.com/xiebiao/freshmart/internal/domain/product"
	"github.com/xiebiao/freshmart/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/freshmart/pkg/metrics"
	"github.com/xiebiao/freshmart/pkg/saga"
)

// CreateOrderUseCase 创建订单用例
// 教学要点:这是整个项目最核心的用例之一
// 涉及:FEFO批次分配、Saga补偿、事务处理、并发控制
type CreateOrderUseCase struct {
	orderRepo   order.Repository
	productRepo product.Repository
	cartStore   cart.Store
	allocator   batch.Allocator
	txManager   *mysql.TxManager
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	productRepo product.Repository,
	cartStore cart.Store,
	allocator batch.Allocator,
	txManager *mysql.TxManager,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartStore:   cartStore,
		allocator:   allocator,
		txManager:   txManager,
	}
}

// CreateOrderRequest 下单请求DTO
// Items为空时从用户购物车读取(购物车下单)
type CreateOrderRequest struct {
	UserID uint              // 买家用户ID(从JWT中提取)
	Items  []CreateOrderItem // 订单明细(直接下单)
}

// CreateOrderItem 订单明细项
type CreateOrderItem struct {
	ProductID uint // 商品ID
	Quantity  int  // 购买数量
}

// CreateOrderResponse 下单响应DTO
type CreateOrderResponse struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行下单用例
// 教学重点:FEFO分配 + Saga补偿的完整流程
//
// 核心问题:生鲜库存不是一个数字,而是一组带保质期的批次
// 下单必须把购买数量拆分到具体批次(先到期先出),且"全有或全无":
// 任何一行分配失败,已扣减的批次必须全部回补,不能留下半分配订单
//
// 流程:
// 1. 读取明细(直接下单 或 购物车下单)
// 2. 锁定当前售价(防止改价攻击:不信任前端传递的价格)
// 3. Saga逐行分配:每行一个事务内的FEFO分配,失败则逆序回补已分配行
// 4. 最后一步持久化Pending订单(含分配明细与首条审计记录)
// 5. 成功后清空购物车(尽力而为)
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	start := time.Now()

	// 1. 确定订单明细
	items := req.Items
	fromCart := false
	if len(items) == 0 {
		userCart, err := uc.cartStore.Get(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		if userCart.IsEmpty() {
			return nil, cart.ErrCartEmpty
		}
		for _, line := range userCart.Lines {
			items = append(items, CreateOrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
		}
		fromCart = true
	}

	// 2. 校验明细并锁定当前售价
	var total int64
	lines := make([]order.OrderLine, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
		p, err := uc.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines[i] = order.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     p.Price, // 使用数据库中的当前价格
		}
		total += p.Price * int64(item.Quantity)
	}

	// 3. Saga逐行分配库存
	// 教学要点:每行分配是独立的短事务(行内的批次扣减原子生效);
	// 后续行失败时,Saga逆序执行已成功行的Deallocate补偿
	orderSaga := saga.NewSaga(30 * time.Second)
	lineAllocs := make([][]batch.Allocation, len(lines))
	for i := range lines {
		idx := i
		line := lines[i]
		orderSaga.AddStep(
			fmt.Sprintf("分配商品%d库存", line.ProductID),
			func(stepCtx context.Context) error {
				return uc.txManager.Transaction(stepCtx, func(txCtx context.Context) error {
					allocs, err := uc.allocator.Allocate(txCtx, line.ProductID, line.Quantity)
					if err != nil {
						return err
					}
					lineAllocs[idx] = allocs
					return nil
				})
			},
			func(stepCtx context.Context) error {
				if len(lineAllocs[idx]) == 0 {
					return nil
				}
				return uc.txManager.Transaction(stepCtx, func(txCtx context.Context) error {
					return uc.allocator.Deallocate(txCtx, lineAllocs[idx])
				})
			},
		)
	}

	// 4. 最后一步:持久化订单(无需补偿,它失败时只回补前面的分配)
	var created *order.Order
	orderSaga.AddStep("创建订单", func(stepCtx context.Context) error {
		for i := range lines {
			allocations := make([]order.LineAllocation, len(lineAllocs[i]))
			for j, a := range lineAllocs[i] {
				allocations[j] = order.LineAllocation{BatchID: a.BatchID, QtyTaken: a.QtyTaken}
			}
			lines[i].Allocations = allocations
		}
		newOrder := order.NewOrder(order.GenerateOrderNo(), req.UserID, lines, total, req.UserID)
		return uc.txManager.Transaction(stepCtx, func(txCtx context.Context) error {
			if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
				return err
			}
			created = newOrder
			return nil
		})
	}, nil)

	if err := orderSaga.Execute(ctx); err != nil {
		if metrics.OrdersFailedTotal != nil {
			metrics.OrdersFailedTotal.Inc()
		}
		// 库存不足时转换为订单创建失败错误(携带首个不足商品的明细)
		var insufficientErr *batch.InsufficientStockError
		if errors.As(err, &insufficientErr) {
			if metrics.AllocationFailuresTotal != nil {
				metrics.AllocationFailuresTotal.Inc()
			}
			return nil, order.NewCreationFailedError(insufficientErr.ProductID, insufficientErr)
		}
		return nil, err
	}

	if metrics.OrdersCreatedTotal != nil {
		metrics.OrdersCreatedTotal.Inc()
		metrics.OrderCreationDuration.Observe(time.Since(start).Seconds())
	}

	// 5. 清空购物车(失败不影响订单,只记日志)
	if fromCart {
		if err := uc.cartStore.Delete(ctx, req.UserID); err != nil {
			log.Printf("下单后清空购物车失败: 用户%d: %v", req.UserID, err)
		}
	}

	return &CreateOrderResponse{
		OrderID:   created.ID,
		OrderNo:   created.OrderNo,
		Total:     created.Total,
		TotalYuan: formatPrice(created.Total),
		Status:    created.Status.Code(),
		CreatedAt: created.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
