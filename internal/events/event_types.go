package events

import (
	"time"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRegistrationCreated   EventType = "registration_created"
	EventRegistrationConfirmed EventType = "registration_confirmed"
	EventRegistrationUpdated   EventType = "registration_updated"
	EventRegistrationCancelled EventType = "registration_cancelled"
	EventPaymentCompleted      EventType = "payment_completed"
	EventPaymentRefunded       EventType = "payment_refunded"
)

// Actor encapsulates who triggered an event.
type Actor struct {
	UserID  string          `json:"user_id"`
	Role    domain.UserRole `json:"role"`
	IsAdmin bool            `json:"is_admin"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	RegistrationID string      `json:"registration_id"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// RegistrationCreatedPayload payload.
type RegistrationCreatedPayload struct {
	UserID    string `json:"user_id"`
	Year      int    `json:"year"`
	DuesCents int64  `json:"dues_cents"`
}

// RegistrationUpdatedPayload payload.
type RegistrationUpdatedPayload struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

// RegistrationCancelledPayload payload.
type RegistrationCancelledPayload struct {
	UserID        string `json:"user_id"`
	Reason        string `json:"reason,omitempty"`
	RefundedCents int64  `json:"refunded_cents"`
	ManualRefund  bool   `json:"manual_refund"`
}

// PaymentCompletedPayload payload.
type PaymentCompletedPayload struct {
	PaymentID   string                 `json:"payment_id"`
	UserID      string                 `json:"user_id"`
	AmountCents int64                  `json:"amount_cents"`
	Provider    domain.PaymentProvider `json:"provider"`
}

// PaymentRefundedPayload payload.
type PaymentRefundedPayload struct {
	PaymentID     string                 `json:"payment_id"`
	UserID        string                 `json:"user_id"`
	RefundedCents int64                  `json:"refunded_cents"`
	Provider      domain.PaymentProvider `json:"provider"`
}
