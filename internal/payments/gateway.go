package payments

import "context"

// ChargeRequest describes a provider charge to create. Amounts are cents.
type ChargeRequest struct {
	PaymentID   string
	AmountCents int64
	Currency    string
	UserEmail   string
	Description string
}

// ChargeResult carries provider identifiers back to the caller.
// ProviderRef is the id refunds are issued against (payment intent id for
// Stripe, order id for PayPal until capture). ClientToken is handed to the
// frontend (Stripe client secret, PayPal approval order id).
type ChargeResult struct {
	ProviderRef string
	ClientToken string
}

// Gateway abstracts a payment processor.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	CaptureCharge(ctx context.Context, providerRef string) (*ChargeResult, error)
	Refund(ctx context.Context, providerRef string, amountCents int64, currency string) (string, error)
}
