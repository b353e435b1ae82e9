package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/repository"
)

// NotificationService persists and delivers notifications for domain events.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifications repository.NotificationRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRegistrationCreated, n.handleRegistrationCreated)
	n.dispatcher.Subscribe(events.EventRegistrationConfirmed, n.handleRegistrationConfirmed)
	n.dispatcher.Subscribe(events.EventRegistrationUpdated, n.handleRegistrationUpdated)
	n.dispatcher.Subscribe(events.EventRegistrationCancelled, n.handleRegistrationCancelled)
	n.dispatcher.Subscribe(events.EventPaymentCompleted, n.handlePaymentCompleted)
	n.dispatcher.Subscribe(events.EventPaymentRefunded, n.handlePaymentRefunded)
}

// ListForUser returns a user's notification history.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	return n.notifications.ListByUser(ctx, userID, limit, offset)
}

func (n *NotificationService) handleRegistrationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("RegistrationCreated", zap.String("registration_id", event.RegistrationID), zap.Any("payload", payload))
	body := fmt.Sprintf("Your camp registration for %d has been received.", payload.Year)
	if payload.DuesCents > 0 {
		body = fmt.Sprintf("%s Dues of %d.%02d are outstanding; your spot is held until payment completes.",
			body, payload.DuesCents/100, payload.DuesCents%100)
	}
	return n.deliver(ctx, payload.UserID, domain.NotificationRegistrationCreated, "Registration received", body)
}

func (n *NotificationService) handleRegistrationConfirmed(ctx context.Context, event events.Event) error {
	n.logger.Info("RegistrationConfirmed", zap.String("registration_id", event.RegistrationID))
	return n.deliver(ctx, event.Actor.UserID, domain.NotificationRegistrationConfirmed,
		"Registration confirmed", "Your camp registration is confirmed. See you on the playa.")
}

func (n *NotificationService) handleRegistrationUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationUpdatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("RegistrationUpdated", zap.String("registration_id", event.RegistrationID))
	body := "Our organizers made a change to your camp registration. Review it in your account."
	if payload.Reason != "" {
		body = fmt.Sprintf("%s Reason: %s.", body, payload.Reason)
	}
	return n.deliver(ctx, payload.UserID, domain.NotificationRegistrationUpdated, "Registration updated", body)
}

func (n *NotificationService) handleRegistrationCancelled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RegistrationCancelledPayload)
	if !ok {
		return nil
	}
	n.logger.Info("RegistrationCancelled",
		zap.String("registration_id", event.RegistrationID),
		zap.Bool("manual_refund", payload.ManualRefund))
	body := "Your camp registration has been cancelled."
	if payload.RefundedCents > 0 {
		body = fmt.Sprintf("%s A refund of %d.%02d has been issued to your payment method.",
			body, payload.RefundedCents/100, payload.RefundedCents%100)
	}
	if payload.ManualRefund {
		body += " Your refund is being processed manually and may take a few days."
	}
	return n.deliver(ctx, payload.UserID, domain.NotificationRegistrationCancelled, "Registration cancelled", body)
}

func (n *NotificationService) handlePaymentCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PaymentCompletedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PaymentCompleted", zap.String("payment_id", payload.PaymentID), zap.Int64("amount_cents", payload.AmountCents))
	body := fmt.Sprintf("Your payment of %d.%02d via %s was received.",
		payload.AmountCents/100, payload.AmountCents%100, strings.ToLower(string(payload.Provider)))
	return n.deliver(ctx, payload.UserID, domain.NotificationPaymentCompleted, "Payment received", body)
}

func (n *NotificationService) handlePaymentRefunded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PaymentRefundedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PaymentRefunded", zap.String("payment_id", payload.PaymentID), zap.Int64("refunded_cents", payload.RefundedCents))
	body := fmt.Sprintf("A refund of %d.%02d has been issued to your payment method.",
		payload.RefundedCents/100, payload.RefundedCents%100)
	return n.deliver(ctx, payload.UserID, domain.NotificationPaymentRefunded, "Payment refunded", body)
}

// deliver persists the notification and, when outbound email is configured,
// hands it to the (stubbed) sender and marks it sent.
func (n *NotificationService) deliver(ctx context.Context, userID string, kind domain.NotificationType, subject, body string) error {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    kind,
		Subject: subject,
		Body:    body,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("failed to persist notification", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if !n.sendEmailStub(notification) {
		return nil
	}
	if err := n.notifications.MarkSent(ctx, notification.ID); err != nil {
		n.logger.Warn("failed to mark notification sent", zap.String("notification_id", notification.ID), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) sendEmailStub(notification *domain.Notification) bool {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return false
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("reply_to", n.cfg.ReplyTo),
		zap.String("user_id", notification.UserID),
		zap.String("subject", notification.Subject))
	return true
}
