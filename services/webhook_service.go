package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventPublisher pushes order lifecycle events to the message bus.
type EventPublisher interface {
	Publish(event models.OrderEvent) error
}

// EmailSender delivers transactional mail; failures are never fatal for the
// caller.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// WebhookService reconciles gateway events against local state. It is the
// single source of truth for finalizing orders: client-side confirmations are
// never trusted.
type WebhookService struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	webhooks repository.WebhookRepository
	events   EventPublisher
	email    EmailSender
	logger   *zap.Logger
	currency string
}

func NewWebhookService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	webhooks repository.WebhookRepository,
	events EventPublisher,
	email EmailSender,
	logger *zap.Logger,
	currency string,
) *WebhookService {
	return &WebhookService{
		orders:   orders,
		users:    users,
		webhooks: webhooks,
		events:   events,
		email:    email,
		logger:   logger,
		currency: currency,
	}
}

// HandleEvent dispatches one verified gateway event. The webhook log row is
// mutated in place and saved exactly once before returning. Every outcome
// other than a storage failure acknowledges the event so the gateway stops
// redelivering.
func (s *WebhookService) HandleEvent(ctx context.Context, event stripe.Event, wlog *models.WebhookLog) {
	wlog.EventType = string(event.Type)

	fresh, err := s.webhooks.InsertEvent(ctx, event.ID, string(event.Type))
	if err != nil {
		s.logger.Error("Failed to record webhook event id",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		wlog.Status = "dedupe check failed"
		s.saveLog(ctx, wlog)
		return
	}
	if !fresh {
		s.logger.Info("Skipping duplicate webhook delivery",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
		)
		wlog.Status = "duplicate event"
		s.saveLog(ctx, wlog)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		s.handlePaymentSucceeded(ctx, event, wlog)
	case "payment_intent.payment_failed":
		s.handlePaymentFailed(ctx, event, wlog)
	case "account.updated":
		s.handleAccountUpdated(ctx, event, wlog)
	case "charge.refund.updated":
		s.handleRefundUpdated(ctx, event, wlog)
	default:
		s.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		wlog.Status = "unhandled event type"
	}

	s.saveLog(ctx, wlog)
}

func (s *WebhookService) handlePaymentSucceeded(ctx context.Context, event stripe.Event, wlog *models.WebhookLog) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Error("Failed to unmarshal payment intent", zap.Error(err))
		wlog.Status = "invalid event data"
		return
	}
	wlog.PaymentIntentID = &pi.ID

	order, err := s.orders.GetByPaymentIntentID(ctx, pi.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wlog.Status = "order not found"
			return
		}
		s.logger.Error("Order lookup failed", zap.String("payment_intent_id", pi.ID), zap.Error(err))
		wlog.Status = "order lookup failed"
		s.releaseEvent(ctx, event.ID)
		return
	}
	wlog.OrderID = &order.ID

	target := models.StatusPair{Status: models.OrderStatusPaid, PaymentStatus: models.PaymentStatusCompleted}
	if !models.CanTransition(order.CurrentPair(), target) {
		s.logger.Warn("Rejecting invalid order transition",
			zap.String("order_id", order.ID.String()),
			zap.String("from_status", order.Status),
			zap.String("from_payment_status", order.PaymentStatus),
			zap.String("to_status", target.Status),
		)
		wlog.Status = "invalid transition"
		return
	}
	if order.CurrentPair() == target {
		// Replay after a dedupe-table wipe; end state already holds.
		wlog.Status = "already paid"
		return
	}

	if err := s.orders.MarkPaid(ctx, order.ID); err != nil {
		s.logger.Error("Failed to mark order paid", zap.String("order_id", order.ID.String()), zap.Error(err))
		wlog.Status = "update failed"
		s.releaseEvent(ctx, event.ID)
		return
	}
	wlog.Status = "success"

	s.publish("payment_succeeded", order)
	s.notifyBuyer(ctx, order, "Your order is confirmed",
		"Thanks for your purchase. Your order "+order.ID.String()+" has been paid and the seller has been notified.")

	s.logger.Info("Order reconciled as paid",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_intent_id", pi.ID),
	)
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event, wlog *models.WebhookLog) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Error("Failed to unmarshal payment intent", zap.Error(err))
		wlog.Status = "invalid event data"
		return
	}
	wlog.PaymentIntentID = &pi.ID

	order, err := s.orders.GetByPaymentIntentID(ctx, pi.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wlog.Status = "order not found"
			return
		}
		wlog.Status = "order lookup failed"
		s.releaseEvent(ctx, event.ID)
		return
	}
	wlog.OrderID = &order.ID

	target := models.StatusPair{Status: models.OrderStatusFailed, PaymentStatus: models.PaymentStatusFailed}
	if !models.CanTransition(order.CurrentPair(), target) {
		// A stale failure retry after the order already succeeded.
		s.logger.Warn("Ignoring stale payment failure",
			zap.String("order_id", order.ID.String()),
			zap.String("current_status", order.Status),
		)
		wlog.Status = "invalid transition"
		return
	}

	if err := s.orders.MarkFailed(ctx, order.ID); err != nil {
		s.logger.Error("Failed to mark order failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		wlog.Status = "update failed"
		s.releaseEvent(ctx, event.ID)
		return
	}
	wlog.Status = "payment failed"

	s.publish("payment_failed", order)
}

func (s *WebhookService) handleAccountUpdated(ctx context.Context, event stripe.Event, wlog *models.WebhookLog) {
	var acct stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
		s.logger.Error("Failed to unmarshal account", zap.Error(err))
		wlog.Status = "invalid event data"
		return
	}

	user, err := s.users.GetByStripeAccountID(ctx, acct.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wlog.Status = "user not found for stripe account"
			return
		}
		wlog.Status = "user lookup failed"
		s.releaseEvent(ctx, event.ID)
		return
	}

	if err := s.users.SetStripeVerified(ctx, user.ID, acct.DetailsSubmitted); err != nil {
		s.logger.Error("Failed to update seller verification",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		wlog.Status = "update failed"
		s.releaseEvent(ctx, event.ID)
		return
	}

	if acct.DetailsSubmitted {
		wlog.Status = "account verified"
	} else {
		wlog.Status = "account updated but not verified"
	}
}

func (s *WebhookService) handleRefundUpdated(ctx context.Context, event stripe.Event, wlog *models.WebhookLog) {
	var ref stripe.Refund
	if err := json.Unmarshal(event.Data.Raw, &ref); err != nil {
		s.logger.Error("Failed to unmarshal refund", zap.Error(err))
		wlog.Status = "invalid event data"
		return
	}

	if ref.Status != stripe.RefundStatusFailed {
		wlog.Status = "refund update ignored"
		return
	}
	if ref.PaymentIntent == nil {
		wlog.Status = "refund missing intent reference"
		return
	}
	wlog.PaymentIntentID = &ref.PaymentIntent.ID

	order, err := s.orders.GetByPaymentIntentID(ctx, ref.PaymentIntent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wlog.Status = "order not found"
			return
		}
		wlog.Status = "order lookup failed"
		s.releaseEvent(ctx, event.ID)
		return
	}
	wlog.OrderID = &order.ID

	target := models.StatusPair{Status: order.Status, PaymentStatus: models.PaymentStatusRefundFailed}
	if !models.CanTransition(order.CurrentPair(), target) {
		wlog.Status = "invalid transition"
		return
	}

	if err := s.orders.MarkRefundFailed(ctx, order.ID); err != nil {
		s.logger.Error("Failed to mark refund failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		wlog.Status = "update failed"
		s.releaseEvent(ctx, event.ID)
		return
	}
	wlog.Status = "refund failed"

	s.publish("refund_failed", order)
}

// releaseEvent drops the dedupe claim after a transient storage failure so
// the gateway's next redelivery of the same event is processed, not skipped.
func (s *WebhookService) releaseEvent(ctx context.Context, eventID string) {
	if err := s.webhooks.DeleteEvent(ctx, eventID); err != nil {
		s.logger.Error("Failed to release webhook event id",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}

func (s *WebhookService) publish(eventType string, order *models.Order) {
	userID := ""
	if order.UserID != nil {
		userID = order.UserID.String()
	}
	evt := models.OrderEvent{
		Type:      eventType,
		OrderID:   order.ID.String(),
		UserID:    userID,
		Amount:    models.MinorUnits(order.TotalAmount),
		Currency:  s.currency,
		Timestamp: time.Now().UTC(),
	}
	if err := s.events.Publish(evt); err != nil {
		s.logger.Error("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", evt.OrderID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Order event published",
		zap.String("event_type", eventType),
		zap.String("order_id", evt.OrderID),
	)
}

func (s *WebhookService) notifyBuyer(ctx context.Context, order *models.Order, subject, body string) {
	if s.email == nil || order.UserID == nil {
		return
	}
	user, err := s.users.GetByID(ctx, *order.UserID)
	if err != nil {
		return
	}
	if err := s.email.SendEmail(ctx, user.Email, subject, body); err != nil {
		s.logger.Warn("Failed to send order email",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *WebhookService) saveLog(ctx context.Context, wlog *models.WebhookLog) {
	if err := s.webhooks.CreateLog(ctx, wlog); err != nil {
		s.logger.Error("Failed to persist webhook log", zap.Error(err))
	}
}
