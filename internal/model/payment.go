package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentProvider string

const (
	ProviderPayPal PaymentProvider = "paypal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment is the ledger record for one order's provider interaction.
// OrderID is the idempotency key: repeated provider events for the same
// order update this row in place, never create a second one.
type Payment struct {
	ID       string          `gorm:"primaryKey;size:36;not null"`
	OrderID  string          `gorm:"size:36;uniqueIndex;not null"`
	Provider PaymentProvider `gorm:"size:16;not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency string          `gorm:"size:8;not null"`
	Status   PaymentStatus   `gorm:"size:16;not null;default:pending"`

	// TransactionReference is the provider's capture id. May be empty
	// for payments that never reached a capture.
	TransactionReference string `gorm:"size:64;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WebhookEvent records a processed provider event id so an exact
// redelivery is acknowledged without re-entering reconciliation.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
