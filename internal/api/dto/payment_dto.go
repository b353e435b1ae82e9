package dto

import (
	"time"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// StartPaymentRequest picks the provider for the caller's pending dues.
type StartPaymentRequest struct {
	Provider domain.PaymentProvider `json:"provider"`
}

// PaymentIntentResponse carries what the frontend needs to finish a charge:
// the Stripe client secret or the PayPal order id.
type PaymentIntentResponse struct {
	Payment     PaymentResponse `json:"payment"`
	ClientToken string          `json:"client_token"`
}

// PaymentResponse representation.
type PaymentResponse struct {
	ID             string                 `json:"id"`
	RegistrationID string                 `json:"registration_id"`
	AmountCents    int64                  `json:"amount_cents"`
	RefundedCents  int64                  `json:"refunded_cents"`
	Currency       string                 `json:"currency"`
	Provider       domain.PaymentProvider `json:"provider"`
	Status         domain.PaymentStatus   `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// RefundRequest payload for the back office.
type RefundRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}
