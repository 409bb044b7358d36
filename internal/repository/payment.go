package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/model"
)

type PaymentRepository interface {
	// UpsertByOrderID inserts the payment record, or updates the
	// existing one for the same order in place. order_id carries a
	// uniqueness constraint, so concurrent inserts collapse into one
	// row instead of racing a read-then-write pair.
	UpsertByOrderID(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.PaymentStatus) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *paymentRepoImpl) UpsertByOrderID(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	assignments := map[string]interface{}{
		"status":     payment.Status,
		"updated_at": time.Now(),
	}
	if payment.TransactionReference != "" {
		assignments["transaction_reference"] = payment.TransactionReference
	}

	return r.conn(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(payment).Error
}

func (r *paymentRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("payment not found")
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status model.PaymentStatus) error {
	return r.conn(tx).WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
