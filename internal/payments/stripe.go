package payments

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/spec-kit/camp-registration/internal/config"
)

// StripeGateway charges dues through Stripe payment intents.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway builds a gateway from config. Returns nil when no key is
// configured so callers can treat the provider as disabled.
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	if cfg.SecretKey == "" {
		return nil
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeGateway{api: api}
}

// CreateCharge opens a payment intent for the requested amount.
func (g *StripeGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if g == nil || g.api == nil {
		return nil, errors.New("stripe not configured")
	}
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(req.AmountCents),
		Currency:     stripe.String(req.Currency),
		Description:  stripe.String(req.Description),
		ReceiptEmail: stripe.String(req.UserEmail),
	}
	params.Context = ctx
	params.AddMetadata("payment_id", req.PaymentID)

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &ChargeResult{
		ProviderRef: intent.ID,
		ClientToken: intent.ClientSecret,
	}, nil
}

// CaptureCharge is a no-op for Stripe; intents capture on confirmation.
func (g *StripeGateway) CaptureCharge(ctx context.Context, providerRef string) (*ChargeResult, error) {
	return &ChargeResult{ProviderRef: providerRef}, nil
}

// Refund issues a partial or full refund against a payment intent.
func (g *StripeGateway) Refund(ctx context.Context, providerRef string, amountCents int64, currency string) (string, error) {
	if g == nil || g.api == nil {
		return "", errors.New("stripe not configured")
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(providerRef),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return "", err
	}
	return refund.ID, nil
}
