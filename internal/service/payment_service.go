package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/observability"
	"github.com/spec-kit/camp-registration/internal/payments"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// PaymentService coordinates dues collection and refunds.
type PaymentService struct {
	payments      repository.PaymentRepository
	registrations repository.RegistrationRepository
	tx            repository.TxManager
	gateways      map[domain.PaymentProvider]payments.Gateway
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	camp          config.CampConfig
}

// PaymentDependencies bundles requirements for the payment service.
type PaymentDependencies struct {
	PaymentRepo      repository.PaymentRepository
	RegistrationRepo repository.RegistrationRepository
	TxManager        repository.TxManager
	Gateways         map[domain.PaymentProvider]payments.Gateway
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
}

// PaymentIntent is returned to the frontend to finish a charge.
type PaymentIntent struct {
	Payment     domain.Payment
	ClientToken string
}

// NewPaymentService constructs the service.
func NewPaymentService(camp config.CampConfig, deps PaymentDependencies) *PaymentService {
	return &PaymentService{
		payments:      deps.PaymentRepo,
		registrations: deps.RegistrationRepo,
		tx:            deps.TxManager,
		gateways:      deps.Gateways,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		camp:          camp,
	}
}

// StartPayment opens a provider charge for the caller's pending dues.
func (s *PaymentService) StartPayment(ctx context.Context, user *domain.User, provider domain.PaymentProvider) (*PaymentIntent, error) {
	gateway, ok := s.gateways[provider]
	if !ok || gateway == nil {
		return nil, apperrors.NewValidationError("payment provider not available", map[string]any{"provider": provider})
	}

	reg, err := s.registrations.GetByUserAndYear(ctx, user.ID, s.camp.Year)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return nil, apperrors.NewConflict("registration is cancelled", nil)
	}

	payment, err := s.pendingPayment(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != user.ID {
		return nil, apperrors.NewForbidden("payment belongs to another user")
	}

	result, err := gateway.CreateCharge(ctx, payments.ChargeRequest{
		PaymentID:   payment.ID,
		AmountCents: payment.AmountCents,
		Currency:    payment.Currency,
		UserEmail:   user.Email,
		Description: fmt.Sprintf("Camp dues %d", s.camp.Year),
	})
	if err != nil {
		s.metrics.RecordPayment(string(provider), "charge_error")
		return nil, apperrors.NewDomainError("PAYMENT_PROVIDER_ERROR", "could not start payment", 502, map[string]any{"provider": provider})
	}

	payment.Provider = provider
	payment.ProviderRef = &result.ProviderRef
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	s.metrics.RecordPayment(string(provider), "charge_created")
	return &PaymentIntent{Payment: *payment, ClientToken: result.ClientToken}, nil
}

// CapturePayment captures an approved PayPal order on return from approval.
func (s *PaymentService) CapturePayment(ctx context.Context, user *domain.User, paymentID string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("payment", nil)
		}
		return nil, err
	}
	if payment.UserID != user.ID {
		return nil, apperrors.NewForbidden("payment belongs to another user")
	}
	if payment.Provider != domain.ProviderPayPal {
		return nil, apperrors.NewValidationError("capture only applies to paypal payments", nil)
	}
	if payment.ProviderRef == nil {
		return nil, apperrors.NewConflict("payment has no open provider order", nil)
	}

	gateway := s.gateways[domain.ProviderPayPal]
	if gateway == nil {
		return nil, apperrors.NewValidationError("payment provider not available", nil)
	}
	result, err := gateway.CaptureCharge(ctx, *payment.ProviderRef)
	if err != nil {
		s.metrics.RecordPayment(string(domain.ProviderPayPal), "capture_error")
		return nil, apperrors.NewDomainError("PAYMENT_PROVIDER_ERROR", "could not capture payment", 502, nil)
	}

	payment.ProviderRef = &result.ProviderRef
	if err := s.completePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkCompletedByProviderRef transitions a payment to COMPLETED from a
// provider webhook and confirms the registration.
func (s *PaymentService) MarkCompletedByProviderRef(ctx context.Context, providerRef string) error {
	payment, err := s.payments.GetByProviderRef(ctx, providerRef)
	if err != nil {
		if err == pgx.ErrNoRows {
			// unknown ref: not ours, drop silently
			return nil
		}
		return err
	}
	if payment.Status == domain.PaymentStatusCompleted {
		return nil
	}
	return s.completePayment(ctx, payment)
}

// MarkFailedByProviderRef transitions a payment to FAILED from a webhook.
func (s *PaymentService) MarkFailedByProviderRef(ctx context.Context, providerRef string) error {
	payment, err := s.payments.GetByProviderRef(ctx, providerRef)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}
	if !payment.Status.CanTransitionTo(domain.PaymentStatusFailed) {
		return nil
	}
	payment.Status = domain.PaymentStatusFailed
	if err := s.payments.Update(ctx, payment); err != nil {
		return err
	}
	s.metrics.RecordPayment(string(payment.Provider), "failed")
	return nil
}

// ApplyProviderRefund records a refund reported with a per-refund amount,
// the way PayPal capture-refund webhooks carry them.
func (s *PaymentService) ApplyProviderRefund(ctx context.Context, providerRef string, refundedCents int64) error {
	payment, err := s.payments.GetByProviderRef(ctx, providerRef)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}
	if refundedCents <= 0 {
		return nil
	}
	return s.setRefundedTotal(ctx, payment, payment.RefundedCents+refundedCents)
}

// ReconcileProviderRefund records a refund reported as a cumulative total,
// the way Stripe's charge.refunded carries amount_refunded. Totals at or
// below what is already recorded are no-ops, so refunds we initiated
// ourselves are not counted a second time when their webhook arrives.
func (s *PaymentService) ReconcileProviderRefund(ctx context.Context, providerRef string, totalRefundedCents int64) error {
	payment, err := s.payments.GetByProviderRef(ctx, providerRef)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}
	return s.setRefundedTotal(ctx, payment, totalRefundedCents)
}

// Refund issues a provider refund on behalf of an admin and records an audit
// entry in the same transaction as the payment update.
func (s *PaymentService) Refund(ctx context.Context, adminUserID, paymentID string, amountCents int64, reason string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("payment", nil)
		}
		return nil, err
	}
	if payment.Status != domain.PaymentStatusCompleted && payment.Status != domain.PaymentStatusPartiallyRefunded {
		return nil, apperrors.NewConflict("payment is not refundable in its current status", map[string]any{"status": payment.Status})
	}
	if amountCents <= 0 {
		amountCents = payment.Refundable()
	}
	if amountCents > payment.Refundable() {
		return nil, apperrors.NewValidationError("refund exceeds refundable amount", map[string]any{
			"refundable_cents": payment.Refundable(),
		})
	}
	if payment.ProviderRef == nil {
		return nil, apperrors.NewConflict("payment has no provider reference", nil)
	}

	gateway := s.gateways[payment.Provider]
	if gateway == nil {
		return nil, apperrors.NewValidationError("payment provider not available", map[string]any{"provider": payment.Provider})
	}
	refundID, err := gateway.Refund(ctx, *payment.ProviderRef, amountCents, payment.Currency)
	if err != nil {
		s.metrics.RecordPayment(string(payment.Provider), "refund_error")
		return nil, apperrors.NewDomainError("REFUND_FAILED", "provider refund failed", 502, map[string]any{"provider": payment.Provider})
	}

	oldStatus := payment.Status
	payment.RefundedCents += amountCents
	if payment.RefundedCents >= payment.AmountCents {
		payment.Status = domain.PaymentStatusRefunded
	} else {
		payment.Status = domain.PaymentStatusPartiallyRefunded
	}

	err = s.tx.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   adminUserID,
			Action:        domain.AuditActionRefund,
			TargetType:    domain.AuditTargetPayment,
			TargetID:      payment.ID,
			OldValue:      map[string]any{"status": oldStatus, "refunded_cents": payment.RefundedCents - amountCents},
			NewValue:      map[string]any{"status": payment.Status, "refunded_cents": payment.RefundedCents, "provider_refund_id": refundID},
			Reason:        reason,
			TransactionID: uuid.NewString(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(string(payment.Provider), "refunded")
	s.publishEvent(ctx, events.Event{
		Type:           events.EventPaymentRefunded,
		RegistrationID: payment.RegistrationID,
		Actor:          events.Actor{UserID: adminUserID, IsAdmin: true},
		Payload: events.PaymentRefundedPayload{
			PaymentID:     payment.ID,
			UserID:        payment.UserID,
			RefundedCents: amountCents,
			Provider:      payment.Provider,
		},
	})
	return payment, nil
}

// ListForUser returns the caller's payments.
func (s *PaymentService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, userID, limit, offset)
}

func (s *PaymentService) pendingPayment(ctx context.Context, registrationID string) (*domain.Payment, error) {
	list, err := s.payments.ListByRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Status == domain.PaymentStatusPending {
			return &list[i], nil
		}
	}
	return nil, apperrors.NewConflict("no pending dues for this registration", nil)
}

func (s *PaymentService) completePayment(ctx context.Context, payment *domain.Payment) error {
	if !payment.Status.CanTransitionTo(domain.PaymentStatusCompleted) {
		return apperrors.NewConflict("payment cannot complete in its current status", map[string]any{"status": payment.Status})
	}
	payment.Status = domain.PaymentStatusCompleted

	err := s.tx.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Payments.Update(ctx, payment); err != nil {
			return err
		}
		reg, err := r.Registrations.GetByID(ctx, payment.RegistrationID)
		if err != nil {
			return err
		}
		if reg.Status.CanTransitionTo(domain.RegistrationStatusConfirmed) {
			reg.Status = domain.RegistrationStatusConfirmed
			if err := r.Registrations.Update(ctx, reg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordPayment(string(payment.Provider), "completed")
	s.publishEvent(ctx, events.Event{
		Type:           events.EventPaymentCompleted,
		RegistrationID: payment.RegistrationID,
		Actor:          events.Actor{UserID: payment.UserID},
		Payload: events.PaymentCompletedPayload{
			PaymentID:   payment.ID,
			UserID:      payment.UserID,
			AmountCents: payment.AmountCents,
			Provider:    payment.Provider,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:           events.EventRegistrationConfirmed,
		RegistrationID: payment.RegistrationID,
		Actor:          events.Actor{UserID: payment.UserID},
	})
	return nil
}

// setRefundedTotal moves a payment's refunded total up to totalCents,
// clamped at the captured amount. Totals at or below the recorded figure
// leave the payment untouched.
func (s *PaymentService) setRefundedTotal(ctx context.Context, payment *domain.Payment, totalCents int64) error {
	if payment.Status != domain.PaymentStatusCompleted && payment.Status != domain.PaymentStatusPartiallyRefunded {
		return nil
	}
	if totalCents > payment.AmountCents {
		totalCents = payment.AmountCents
	}
	if totalCents <= payment.RefundedCents {
		return nil
	}
	delta := totalCents - payment.RefundedCents
	payment.RefundedCents = totalCents
	if payment.RefundedCents >= payment.AmountCents {
		payment.Status = domain.PaymentStatusRefunded
	} else {
		payment.Status = domain.PaymentStatusPartiallyRefunded
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return err
	}
	s.metrics.RecordPayment(string(payment.Provider), "refunded")
	s.publishEvent(ctx, events.Event{
		Type:           events.EventPaymentRefunded,
		RegistrationID: payment.RegistrationID,
		Actor:          events.Actor{UserID: payment.UserID},
		Payload: events.PaymentRefundedPayload{
			PaymentID:     payment.ID,
			UserID:        payment.UserID,
			RefundedCents: delta,
			Provider:      payment.Provider,
		},
	})
	return nil
}

func (s *PaymentService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
