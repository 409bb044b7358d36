package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/client"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/repository"
)

// Provider event types this service reconciles. Anything else is
// acknowledged and ignored.
const (
	eventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	eventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
	eventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	eventCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
)

type PaymentService interface {
	// CreateProviderPayment opens a provider payment intent for the
	// order's total and returns the approval redirect target.
	CreateProviderPayment(ctx context.Context, orderID, requesterID string) (*dto.PayResponse, error)
	// Capture captures the provider order and settles ours. A repeat
	// call on an already-paid order succeeds without contacting the
	// provider again.
	Capture(ctx context.Context, providerOrderID, requesterID string) (*model.Order, error)
	// HandleWebhook verifies and applies one provider event. Once the
	// signature checks out the event is always acknowledged, even when
	// it cannot be processed; an unverifiable event is rejected.
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type paymentServiceImpl struct {
	txManager    repository.TxManager
	paypalClient client.PaypalClient
	orderRepo    repository.OrderRepository
	paymentRepo  repository.PaymentRepository
	eventRepo    repository.WebhookEventRepository
	currency     string
	logger       *zap.Logger
}

func NewPaymentService(
	txManager repository.TxManager,
	paypalClient client.PaypalClient,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	eventRepo repository.WebhookEventRepository,
	currency string,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		txManager:    txManager,
		paypalClient: paypalClient,
		orderRepo:    orderRepo,
		paymentRepo:  paymentRepo,
		eventRepo:    eventRepo,
		currency:     currency,
		logger:       logger,
	}
}

func (s *paymentServiceImpl) CreateProviderPayment(ctx context.Context, orderID, requesterID string) (*dto.PayResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, apperr.Forbidden("not authorized to pay for this order")
	}
	if order.Settled() {
		return nil, apperr.InvalidState("order is already settled")
	}

	resp, err := s.paypalClient.CreateOrder(ctx, order.TotalOrderPrice, s.currency, order.ID)
	if err != nil {
		return nil, err
	}

	// Repeated calls simply overwrite the handle; the newest intent is
	// the one the client will approve.
	if err := s.orderRepo.SetProviderOrderID(ctx, order.ID, resp.ProviderOrderID); err != nil {
		return nil, err
	}

	return &dto.PayResponse{
		OrderID:          order.ID,
		ProviderOrderID:  resp.ProviderOrderID,
		OrderApprovalURL: resp.ApproveURL,
	}, nil
}

func (s *paymentServiceImpl) Capture(ctx context.Context, providerOrderID, requesterID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, apperr.Forbidden("not authorized to capture this payment")
	}
	if order.IsPaid {
		return order, nil
	}
	if order.IsCancelled || order.IsDelivered {
		return nil, apperr.InvalidState("order can no longer be paid")
	}

	capture, err := s.paypalClient.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}

	if err := s.settleOrder(ctx, order, capture.CaptureID); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.paypalClient.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return err
	}

	var event model.PaypalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		// Verified but unparseable: nothing this system can ever do
		// with it, so acknowledge to stop redelivery.
		s.logger.Warn("dropping malformed webhook event", zap.Error(err))
		return nil
	}

	if event.ID != "" {
		processed, err := s.eventRepo.Exists(ctx, event.ID)
		if err != nil {
			return err
		}
		if processed {
			s.logger.Info("skipping already processed webhook event",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType))
			return nil
		}
	}

	switch event.EventType {
	case eventCaptureCompleted, eventOrderApproved:
		return s.handlePaymentCompleted(ctx, &event)
	case eventCaptureDenied, eventCaptureRefunded:
		return s.handlePaymentFailed(ctx, &event)
	default:
		s.logger.Info("ignoring webhook event type",
			zap.String("event_type", event.EventType))
		return nil
	}
}

func (s *paymentServiceImpl) handlePaymentCompleted(ctx context.Context, event *model.PaypalWebhookEvent) error {
	order, ok, err := s.resolveOrder(ctx, event)
	if err != nil || !ok {
		return err
	}

	// Idempotency boundary against at-least-once delivery: a settled
	// order takes no further payment events on this path.
	if order.Settled() {
		s.logger.Info("order already settled, acknowledging webhook",
			zap.String("order_id", order.ID),
			zap.String("event_id", event.ID))
		return nil
	}

	from := order.Status
	if err := order.MarkPaid(time.Now().UTC()); err != nil {
		return nil
	}

	return s.txManager.Do(ctx, func(tx *gorm.DB) error {
		err := s.paymentRepo.UpsertByOrderID(ctx, tx, &model.Payment{
			ID:                   uuid.NewString(),
			OrderID:              order.ID,
			Provider:             model.ProviderPayPal,
			Amount:               order.TotalOrderPrice,
			Currency:             s.currency,
			Status:               model.PaymentSuccess,
			TransactionReference: event.Resource.ID,
		})
		if err != nil {
			return err
		}

		if err := s.orderRepo.ApplyTransition(ctx, tx, order, from); err != nil {
			return err
		}

		return s.markEventProcessed(ctx, tx, event)
	})
}

func (s *paymentServiceImpl) handlePaymentFailed(ctx context.Context, event *model.PaypalWebhookEvent) error {
	order, ok, err := s.resolveOrder(ctx, event)
	if err != nil || !ok {
		return err
	}

	from := order.Status
	// A denial or refund may reverse a prior paid state; only
	// cancelled or delivered orders refuse the transition, and for
	// those there is nothing left to do.
	if err := order.MarkPaymentFailed(); err != nil {
		s.logger.Info("order can no longer fail payment, acknowledging webhook",
			zap.String("order_id", order.ID),
			zap.String("event_id", event.ID))
		return nil
	}

	return s.txManager.Do(ctx, func(tx *gorm.DB) error {
		err := s.paymentRepo.UpsertByOrderID(ctx, tx, &model.Payment{
			ID:                   uuid.NewString(),
			OrderID:              order.ID,
			Provider:             model.ProviderPayPal,
			Amount:               order.TotalOrderPrice,
			Currency:             s.currency,
			Status:               model.PaymentFailed,
			TransactionReference: event.Resource.ID,
		})
		if err != nil {
			return err
		}

		if err := s.orderRepo.ApplyTransition(ctx, tx, order, from); err != nil {
			return err
		}

		return s.markEventProcessed(ctx, tx, event)
	})
}

// markEventProcessed records the event in the dedup ledger. Events
// without an id cannot be deduplicated and are not recorded; they rely
// on the settled-order boundary alone.
func (s *paymentServiceImpl) markEventProcessed(ctx context.Context, tx *gorm.DB, event *model.PaypalWebhookEvent) error {
	if event.ID == "" {
		return nil
	}
	return s.eventRepo.MarkProcessed(ctx, tx, event.ID, event.EventType)
}

// resolveOrder looks up the order an event refers to. Events without a
// resolvable order are logged and acknowledged (ok=false, err=nil):
// retrying them can never succeed.
func (s *paymentServiceImpl) resolveOrder(ctx context.Context, event *model.PaypalWebhookEvent) (*model.Order, bool, error) {
	ref := event.OrderRef()
	if ref == "" {
		s.logger.Warn("webhook event carries no order reference",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType))
		return nil, false, nil
	}

	order, err := s.orderRepo.FindByID(ctx, ref)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			s.logger.Warn("webhook event references unknown order",
				zap.String("event_id", event.ID),
				zap.String("order_ref", ref))
			return nil, false, nil
		}
		return nil, false, err
	}

	return order, true, nil
}

// settleOrder records the successful capture and moves the order to
// paid. When a concurrent webhook already settled it, that outcome is
// kept and the capture still counts as a success.
func (s *paymentServiceImpl) settleOrder(ctx context.Context, order *model.Order, captureID string) error {
	from := order.Status
	if err := order.MarkPaid(time.Now().UTC()); err != nil {
		return err
	}

	err := s.txManager.Do(ctx, func(tx *gorm.DB) error {
		err := s.paymentRepo.UpsertByOrderID(ctx, tx, &model.Payment{
			ID:                   uuid.NewString(),
			OrderID:              order.ID,
			Provider:             model.ProviderPayPal,
			Amount:               order.TotalOrderPrice,
			Currency:             s.currency,
			Status:               model.PaymentSuccess,
			TransactionReference: captureID,
		})
		if err != nil {
			return err
		}

		return s.orderRepo.ApplyTransition(ctx, tx, order, from)
	})

	if err != nil && apperr.KindOf(err) == apperr.KindConflict {
		current, findErr := s.orderRepo.FindByID(ctx, order.ID)
		if findErr == nil && current.IsPaid {
			*order = *current
			return nil
		}
		return err
	}

	return err
}
