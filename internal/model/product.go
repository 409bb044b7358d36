package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	Name      string `gorm:"size:50;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID            string          `gorm:"primaryKey;size:36;not null"`
	Name          string          `gorm:"size:50;not null"`
	Description   string          `gorm:"size:500"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	CategoryID    string          `gorm:"size:36;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
