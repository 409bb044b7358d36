package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quantity bounds for a single cart line.
const (
	MinLineQuantity = 1
	MaxLineQuantity = 100
)

// Cart holds a user's current selection. At most one cart exists per
// user; a cart with zero items is deleted rather than persisted. Line
// prices track the live catalog price, only the order snapshot freezes
// them.
type Cart struct {
	ID         string          `gorm:"primaryKey;size:36;not null"`
	UserID     string          `gorm:"size:36;uniqueIndex;not null"`
	Items      []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	ID          uint            `gorm:"primaryKey"`
	CartID      string          `gorm:"size:36;uniqueIndex:idx_cart_product;not null"`
	ProductID   string          `gorm:"size:36;uniqueIndex:idx_cart_product;not null"`
	Quantity    int             `gorm:"not null"`
	PriceAtTime decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item returns the line for productID, or nil when absent.
func (c *Cart) Item(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Recalculate re-derives every subtotal and the cart total from the
// lines. Totals are never trusted incrementally.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		item.Subtotal = item.PriceAtTime.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Subtotal)
	}
	c.TotalPrice = total
}

// RemoveLine drops the line for productID and reports whether it was
// present.
func (c *Cart) RemoveLine(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
