package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/repository"
)

type OrderService interface {
	// PlaceOrder converts the user's cart into an immutable priced
	// order, reserving stock per line. The originating cart is cleared
	// afterwards on a best-effort basis: once the order is persisted it
	// stands even if the clear fails.
	PlaceOrder(ctx context.Context, userID string, req *dto.PlaceOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, orderID, requesterID string, requesterRole model.Role) (*model.Order, error)
	ListMyOrders(ctx context.Context, userID string) ([]*model.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*model.Order, error)
	// Complete closes out a shipped order.
	Complete(ctx context.Context, orderID string) (*model.Order, error)
	Cancel(ctx context.Context, orderID, requesterID string) (*model.Order, error)
}

type orderServiceImpl struct {
	txManager   repository.TxManager
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	paymentRepo repository.PaymentRepository
	logger      *zap.Logger
}

func NewOrderService(
	txManager repository.TxManager,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		txManager:   txManager,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (s *orderServiceImpl) PlaceOrder(ctx context.Context, userID string, req *dto.PlaceOrderRequest) (*model.Order, error) {
	if req.ShippingAddress.Details == "" || req.ShippingAddress.Street == "" || req.ShippingAddress.City == "" {
		return nil, apperr.InvalidInput("shipping address is incomplete")
	}
	if req.ShippingPrice.IsNegative() {
		return nil, apperr.InvalidInput("shipping price cannot be negative")
	}

	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentMethodCash
	}
	if method != model.PaymentMethodCard && method != model.PaymentMethodCash {
		return nil, apperr.InvalidInput("unknown payment method type")
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.InvalidInput("cart is empty")
		}
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperr.InvalidInput("cart is empty")
	}

	productIDs := make([]string, len(cart.Items))
	for i := range cart.Items {
		productIDs[i] = cart.Items[i].ProductID
	}

	order := &model.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		ShippingAddress: req.ShippingAddress,
		ShippingPrice:   req.ShippingPrice,
		PaymentMethod:   method,
		Status:          model.OrderPending,
	}

	err = s.txManager.Do(ctx, func(tx *gorm.DB) error {
		products, err := s.productRepo.FindMany(ctx, tx, productIDs)
		if err != nil {
			return err
		}
		byID := make(map[string]*model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		for i := range cart.Items {
			line := &cart.Items[i]
			product, ok := byID[line.ProductID]
			if !ok {
				return apperr.NotFound("product not found: " + line.ProductID)
			}

			// Reserve stock while the price is being frozen; if any
			// line is oversold the whole order aborts.
			if err := s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}

			order.Items = append(order.Items, model.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order.TotalOrderPrice = total.Add(req.ShippingPrice)
		if !order.TotalOrderPrice.IsPositive() {
			return apperr.InvalidInput("order total price must be greater than zero")
		}

		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	// Best-effort cleanup. A partially cleared cart only risks the
	// leftovers being ordered again, which the next snapshot absorbs.
	if err := s.cartRepo.Delete(ctx, nil, cart.ID); err != nil {
		s.logger.Warn("failed to clear cart after order placement",
			zap.String("order_id", order.ID),
			zap.String("cart_id", cart.ID),
			zap.Error(err))
	}

	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, requesterID string, requesterRole model.Role) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != requesterID && requesterRole != model.RoleAdmin {
		return nil, apperr.Forbidden("not authorized to view this order")
	}

	return order, nil
}

func (s *orderServiceImpl) ListMyOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *orderServiceImpl) MarkDelivered(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.MarkDelivered(time.Now().UTC()); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(tx *gorm.DB) error {
		return s.orderRepo.ApplyTransition(ctx, tx, order, from)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderServiceImpl) Complete(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.MarkCompleted(); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(tx *gorm.DB) error {
		return s.orderRepo.ApplyTransition(ctx, tx, order, from)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderServiceImpl) Cancel(ctx context.Context, orderID, requesterID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != requesterID {
		return nil, apperr.Forbidden("not authorized to cancel this order")
	}

	from := order.Status
	if err := order.MarkCancelled(time.Now().UTC()); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(tx *gorm.DB) error {
		// An open payment intent for a cancelled order is dead; mark
		// its record failed if one exists.
		if _, err := s.paymentRepo.FindByOrderID(ctx, order.ID); err == nil {
			if err := s.paymentRepo.UpdateStatus(ctx, tx, order.ID, model.PaymentFailed); err != nil {
				return err
			}
		} else if apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}

		return s.orderRepo.ApplyTransition(ctx, tx, order, from)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
