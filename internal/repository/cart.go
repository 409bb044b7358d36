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

type CartRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Cart, error)
	// Save persists the cart and makes the stored line set exactly
	// match cart.Items.
	Save(ctx context.Context, tx *gorm.DB, cart *model.Cart) error
	Delete(ctx context.Context, tx *gorm.DB, cartID string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cartRepoImpl) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("cart not found for this user")
	}
	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) Save(ctx context.Context, tx *gorm.DB, cart *model.Cart) error {
	db := r.conn(tx).WithContext(ctx)

	err := db.Omit("Items").Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_price": cart.TotalPrice,
			"updated_at":  time.Now(),
		}),
	}).Create(cart).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// user_id uniqueness: a concurrent request created the cart
		return apperr.Conflict("cart already exists for this user")
	}
	if err != nil {
		return err
	}

	keep := make([]string, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		item.CartID = cart.ID
		keep = append(keep, item.ProductID)

		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":      item.Quantity,
				"price_at_time": item.PriceAtTime,
				"subtotal":      item.Subtotal,
				"updated_at":    time.Now(),
			}),
		}).Create(item).Error
		if err != nil {
			return err
		}
	}

	q := db.Where("cart_id = ?", cart.ID)
	if len(keep) > 0 {
		q = q.Where("product_id NOT IN ?", keep)
	}
	return q.Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) Delete(ctx context.Context, tx *gorm.DB, cartID string) error {
	db := r.conn(tx).WithContext(ctx)

	if err := db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", cartID).Delete(&model.Cart{}).Error
}
