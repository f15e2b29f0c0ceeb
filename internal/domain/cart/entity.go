package cart

import (
	"time"
)

// CartLine 购物车行
type CartLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Cart 购物车实体(聚合根)
// 设计说明:
// 1. 购物车是纯意向数据:加购/改量只做软性库存提示,绝不触碰批次台账,
//    不创建任何预留——库存的硬校验只发生在下单那一刻
// 2. 以UserID为键整体存取(Redis Hash不适合带TTL的整体快照,用JSON String)
// 3. UpdatedAt用于购物车过期清理
type Cart struct {
	UserID    uint       `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart 创建空购物车
func NewCart(userID uint) *Cart {
	return &Cart{
		UserID:    userID,
		Lines:     []CartLine{},
		UpdatedAt: time.Now(),
	}
}

// AddLine 加购(领域行为)
// 已存在的商品累加数量,不存在则追加新行
func (c *Cart) AddLine(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity})
	c.UpdatedAt = time.Now()
	return nil
}

// SetLineQuantity 直接设置某行数量
// 数量设为0等价于删除该行
func (c *Cart) SetLineQuantity(productID uint, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return c.RemoveLine(productID)
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine 删除某商品行
func (c *Cart) RemoveLine(productID uint) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrLineNotFound
}

// Clear 清空购物车(下单成功后调用)
func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
	c.UpdatedAt = time.Now()
}

// IsEmpty 购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
