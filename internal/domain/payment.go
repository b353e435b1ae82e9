package domain

import "time"

// PaymentProvider identifies the upstream processor.
type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "STRIPE"
	ProviderPayPal PaymentProvider = "PAYPAL"
)

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusCancelled         PaymentStatus = "CANCELLED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// Payment records a dues charge against a registration. Amounts are cents.
type Payment struct {
	ID             string
	UserID         string
	RegistrationID string
	AmountCents    int64
	RefundedCents  int64
	Currency       string
	Provider       PaymentProvider
	ProviderRef    *string
	Status         PaymentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusCompleted:         {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusPartiallyRefunded: {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusFailed:            {},
	PaymentStatusCancelled:         {},
	PaymentStatusRefunded:          {},
}

// CanTransitionTo reports whether a payment status change is allowed.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, candidate := range paymentTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Refundable returns how many cents can still be refunded.
func (p *Payment) Refundable() int64 {
	remaining := p.AmountCents - p.RefundedCents
	if remaining < 0 {
		return 0
	}
	return remaining
}
