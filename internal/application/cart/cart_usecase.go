package cart

import (
	"context"
	"fmt"

	"github.com/xiebiao/freshmart/internal/domain/cart"
	"github.com/xiebiao/freshmart/internal/domain/product"
)

// StockReader 可分配总量读取接口(软性库存提示用)
type StockReader interface {
	TotalRemaining(ctx context.Context, productID uint) (int, error)
}

// CartUseCase 购物车用例
// 设计说明:
// 1. 购物车的库存检查全部是"软性"的——只提示不拦截、不预留:
//    加购成功不代表下单一定成功,硬校验只在下单那一刻发生
// 2. 为什么不做预留?生鲜库存随批次过期持续缩水,预留会把
//    临期库存锁死在可能永远不结算的购物车里
type CartUseCase struct {
	store       cart.Store
	productRepo product.Repository
	stock       StockReader
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(store cart.Store, productRepo product.Repository, stock StockReader) *CartUseCase {
	return &CartUseCase{
		store:       store,
		productRepo: productRepo,
		stock:       stock,
	}
}

// CartLineDTO 购物车行DTO(带软性库存提示)
type CartLineDTO struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	Available   int    `json:"available"`  // 当前可分配总量(快照,非预留)
	InStock     bool   `json:"in_stock"`   // 按当前快照能否满足本行数量
}

// CartResponse 购物车响应DTO
type CartResponse struct {
	Lines     []CartLineDTO `json:"lines"`
	TotalYuan string        `json:"total_yuan"`
	Total     int64         `json:"total"`
}

// AddItem 加购
// 软性检查:商品必须存在;数量合法;库存不足仅在响应中提示
func (uc *CartUseCase) AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartResponse, error) {
	// 商品必须存在(避免购物车里躺着已下架商品的幽灵行)
	if _, err := uc.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	c, err := uc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.AddLine(productID, quantity); err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.buildResponse(ctx, c)
}

// UpdateItem 修改某行数量(0等价删除)
func (uc *CartUseCase) UpdateItem(ctx context.Context, userID, productID uint, quantity int) (*CartResponse, error) {
	c, err := uc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.SetLineQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.buildResponse(ctx, c)
}

// RemoveItem 删除某行
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, productID uint) (*CartResponse, error) {
	c, err := uc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveLine(productID); err != nil {
		return nil, err
	}
	if err := uc.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.buildResponse(ctx, c)
}

// GetCart 查询购物车(每次查询刷新库存快照)
func (uc *CartUseCase) GetCart(ctx context.Context, userID uint) (*CartResponse, error) {
	c, err := uc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.buildResponse(ctx, c)
}

// Clear 清空购物车
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) error {
	return uc.store.Delete(ctx, userID)
}

// buildResponse 组装响应:逐行补充商品信息与库存快照
func (uc *CartUseCase) buildResponse(ctx context.Context, c *cart.Cart) (*CartResponse, error) {
	lines := make([]CartLineDTO, 0, len(c.Lines))
	var total int64
	for _, line := range c.Lines {
		p, err := uc.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			// 商品已下架:跳过该行(不阻塞整车展示)
			continue
		}
		available, err := uc.stock.TotalRemaining(ctx, line.ProductID)
		if err != nil {
			available = 0
		}
		lines = append(lines, CartLineDTO{
			ProductID:   line.ProductID,
			ProductName: p.Name,
			Unit:        p.Unit,
			Price:       p.Price,
			Quantity:    line.Quantity,
			Available:   available,
			InStock:     available >= line.Quantity,
		})
		total += p.Price * int64(line.Quantity)
	}
	return &CartResponse{
		Lines:     lines,
		Total:     total,
		TotalYuan: formatPrice(total),
	}, nil
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	return fmt.Sprintf("%.2f", float64(priceFen)/100.0)
}
