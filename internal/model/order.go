package model

import (
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-backend/internal/apperr"
)

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderPaid          OrderStatus = "paid"
	OrderPaymentFailed OrderStatus = "payment_failed"
	OrderShipped       OrderStatus = "shipped"
	OrderCompleted     OrderStatus = "completed"
	OrderCancelled     OrderStatus = "cancelled"
)

type PaymentMethodType string

const (
	PaymentMethodCard PaymentMethodType = "card"
	PaymentMethodCash PaymentMethodType = "cash"
)

type ShippingAddress struct {
	Details string `gorm:"size:255" json:"details"`
	Street  string `gorm:"size:255" json:"street"`
	City    string `gorm:"size:100" json:"city"`
}

// Order is an immutable priced snapshot of a cart. Item prices are
// frozen at creation; later catalog changes never alter the total.
// Lifecycle mutations go through the transition methods below, which
// keep Status and the paid/cancelled/delivered flags consistent.
type Order struct {
	ID              string            `gorm:"primaryKey;size:36;not null"`
	UserID          string            `gorm:"size:36;index;not null"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID"`
	ShippingAddress ShippingAddress   `gorm:"embedded;embeddedPrefix:shipping_"`
	ShippingPrice   decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	TotalOrderPrice decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   PaymentMethodType `gorm:"size:16;not null;default:cash"`

	// ProviderOrderID is the payment provider's handle for this order,
	// set when a provider intent is opened.
	ProviderOrderID string `gorm:"size:64;index"`

	IsPaid      bool `gorm:"not null;default:false"`
	PaidAt      *time.Time
	IsCancelled bool `gorm:"not null;default:false"`
	CancelledAt *time.Time
	IsDelivered bool `gorm:"not null;default:false"`
	DeliveredAt *time.Time

	Status    OrderStatus `gorm:"size:32;index;not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   string          `gorm:"size:36;index;not null"`
	ProductID string          `gorm:"size:36;index;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}

// Settled reports whether payment events may no longer move this order
// to paid: already paid, cancelled or delivered.
func (o *Order) Settled() bool {
	return o.IsPaid || o.IsCancelled || o.IsDelivered
}

// MarkPaid applies the pending → paid transition.
func (o *Order) MarkPaid(now time.Time) error {
	if o.IsPaid {
		return apperr.InvalidState("order is already paid")
	}
	if o.IsCancelled || o.IsDelivered {
		return apperr.InvalidState("order can no longer be paid")
	}
	o.IsPaid = true
	o.PaidAt = &now
	o.Status = OrderPaid
	return nil
}

// MarkPaymentFailed applies the pending/paid → payment_failed
// transition. A refund must be able to reverse a paid order, so prior
// paid state is not a guard violation here.
func (o *Order) MarkPaymentFailed() error {
	if o.IsCancelled || o.IsDelivered {
		return apperr.InvalidState("order can no longer fail payment")
	}
	o.IsPaid = false
	o.Status = OrderPaymentFailed
	return nil
}

// MarkCancelled applies the pending → cancelled transition. Settled or
// fulfilled orders are immutable with respect to cancellation.
func (o *Order) MarkCancelled(now time.Time) error {
	if o.IsPaid || o.IsDelivered || o.IsCancelled {
		return apperr.InvalidState("cannot cancel this order")
	}
	o.IsCancelled = true
	o.CancelledAt = &now
	o.Status = OrderCancelled
	return nil
}

// MarkDelivered applies the paid → shipped transition.
func (o *Order) MarkDelivered(now time.Time) error {
	if !o.IsPaid {
		return apperr.InvalidState("order is not paid yet")
	}
	if o.IsCancelled || o.IsDelivered {
		return apperr.InvalidState("order cannot be delivered")
	}
	o.IsDelivered = true
	o.DeliveredAt = &now
	o.Status = OrderShipped
	return nil
}

// MarkCompleted closes out a shipped order.
func (o *Order) MarkCompleted() error {
	if o.Status != OrderShipped {
		return apperr.InvalidState("order is not shipped")
	}
	o.Status = OrderCompleted
	return nil
}
