package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/repository"
)

type CartService interface {
	// AddItems merges the requested lines into the user's cart,
	// creating the cart on first use. Existing lines accumulate
	// quantity rather than being replaced.
	AddItems(ctx context.Context, userID string, items []dto.CartItemRequest) (*model.Cart, error)
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*model.Cart, error)
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type cartServiceImpl struct {
	txManager   repository.TxManager
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	txManager repository.TxManager,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartServiceImpl{
		txManager:   txManager,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) AddItems(ctx context.Context, userID string, items []dto.CartItemRequest) (*model.Cart, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidInput("no items to add")
	}
	for _, item := range items {
		if item.Quantity < model.MinLineQuantity || item.Quantity > model.MaxLineQuantity {
			return nil, apperr.InvalidInput(fmt.Sprintf(
				"quantity for product %s must be between %d and %d",
				item.ProductID, model.MinLineQuantity, model.MaxLineQuantity))
		}
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return nil, err
		}
		cart = &model.Cart{
			ID:     uuid.NewString(),
			UserID: userID,
		}
	}

	for _, req := range items {
		product, err := s.productRepo.FindByID(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}

		quantity := req.Quantity
		if line := cart.Item(req.ProductID); line != nil {
			quantity += line.Quantity
		}
		if quantity > model.MaxLineQuantity {
			return nil, apperr.InvalidInput(fmt.Sprintf(
				"quantity for product %s exceeds the limit of %d",
				req.ProductID, model.MaxLineQuantity))
		}
		if quantity > product.StockQuantity {
			return nil, apperr.InvalidInput("insufficient stock for product " + req.ProductID)
		}

		if line := cart.Item(req.ProductID); line != nil {
			line.Quantity = quantity
		} else {
			cart.Items = append(cart.Items, model.CartItem{
				CartID:    cart.ID,
				ProductID: req.ProductID,
				Quantity:  quantity,
			})
		}
	}

	// Carts track live catalog prices: reprice every line, not just the
	// ones touched by this request. Only the order snapshot freezes
	// prices.
	if err := s.repriceLines(ctx, cart); err != nil {
		return nil, err
	}
	cart.Recalculate()

	if err := s.saveCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartServiceImpl) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if quantity < model.MinLineQuantity || quantity > model.MaxLineQuantity {
		return nil, apperr.InvalidInput(fmt.Sprintf(
			"quantity must be between %d and %d",
			model.MinLineQuantity, model.MaxLineQuantity))
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	line := cart.Item(productID)
	if line == nil {
		return nil, apperr.NotFound("product not in cart")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.StockQuantity {
		return nil, apperr.InvalidInput("insufficient stock for product " + productID)
	}

	line.Quantity = quantity
	if err := s.repriceLines(ctx, cart); err != nil {
		return nil, err
	}
	cart.Recalculate()

	if err := s.saveCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, productID string) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveLine(productID) {
		return nil, apperr.NotFound("product not in cart")
	}

	// A cart with zero items does not persist.
	if cart.IsEmpty() {
		err := s.txManager.Do(ctx, func(tx *gorm.DB) error {
			return s.cartRepo.Delete(ctx, tx, cart.ID)
		})
		if err != nil {
			return nil, err
		}
		cart.Recalculate()
		return cart, nil
	}

	cart.Recalculate()
	if err := s.saveCart(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Never trust a stored total.
	cart.Recalculate()
	return cart, nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, userID string) error {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}

	return s.txManager.Do(ctx, func(tx *gorm.DB) error {
		return s.cartRepo.Delete(ctx, tx, cart.ID)
	})
}

func (s *cartServiceImpl) repriceLines(ctx context.Context, cart *model.Cart) error {
	ids := make([]string, len(cart.Items))
	for i := range cart.Items {
		ids[i] = cart.Items[i].ProductID
	}

	products, err := s.productRepo.FindMany(ctx, nil, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for i := range cart.Items {
		product, ok := byID[cart.Items[i].ProductID]
		if !ok {
			return apperr.NotFound("product not found: " + cart.Items[i].ProductID)
		}
		cart.Items[i].PriceAtTime = product.Price
	}

	return nil
}

func (s *cartServiceImpl) saveCart(ctx context.Context, cart *model.Cart) error {
	err := s.txManager.Do(ctx, func(tx *gorm.DB) error {
		return s.cartRepo.Save(ctx, tx, cart)
	})
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("cart was modified concurrently")
	}
	return err
}
