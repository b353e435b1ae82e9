package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	paypal "github.com/plutov/paypal/v4"

	"github.com/spec-kit/camp-registration/internal/config"
)

// PayPalGateway charges dues through PayPal orders.
type PayPalGateway struct {
	client *paypal.Client
}

// NewPayPalGateway builds a gateway from config. Returns nil when no
// credentials are configured so callers can treat the provider as disabled.
func NewPayPalGateway(cfg config.PayPalConfig) (*PayPalGateway, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, nil
	}
	base := paypal.APIBaseSandBox
	if cfg.Live {
		base = paypal.APIBaseLive
	}
	c, err := paypal.NewClient(cfg.ClientID, cfg.Secret, base)
	if err != nil {
		return nil, err
	}
	if _, err := c.GetAccessToken(context.Background()); err != nil {
		return nil, err
	}
	return &PayPalGateway{client: c}, nil
}

// CreateCharge opens a capture-intent order for the requested amount.
func (g *PayPalGateway) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("paypal not configured")
	}
	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: req.PaymentID,
		Description: req.Description,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: strings.ToUpper(req.Currency),
			Value:    centsToDecimal(req.AmountCents),
		},
	}}
	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return nil, err
	}
	return &ChargeResult{
		ProviderRef: order.ID,
		ClientToken: order.ID,
	}, nil
}

// CaptureCharge captures an approved order and returns the capture id, which
// replaces the order id as the refund reference.
func (g *PayPalGateway) CaptureCharge(ctx context.Context, providerRef string) (*ChargeResult, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("paypal not configured")
	}
	capture, err := g.client.CaptureOrder(ctx, providerRef, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, err
	}
	captureID := providerRef
	for _, unit := range capture.PurchaseUnits {
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			captureID = unit.Payments.Captures[0].ID
			break
		}
	}
	return &ChargeResult{ProviderRef: captureID}, nil
}

// Refund issues a partial or full refund against a capture.
func (g *PayPalGateway) Refund(ctx context.Context, providerRef string, amountCents int64, currency string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("paypal not configured")
	}
	refund, err := g.client.RefundCapture(ctx, providerRef, paypal.RefundCaptureRequest{
		Amount: &paypal.Money{
			Currency: strings.ToUpper(currency),
			Value:    centsToDecimal(amountCents),
		},
	})
	if err != nil {
		return "", err
	}
	return refund.ID, nil
}

// VerifyWebhook checks a webhook's transmission signature with PayPal.
func (g *PayPalGateway) VerifyWebhook(ctx context.Context, req *http.Request, webhookID string) (bool, error) {
	if g == nil || g.client == nil {
		return false, errors.New("paypal not configured")
	}
	resp, err := g.client.VerifyWebhookSignature(ctx, req, webhookID)
	if err != nil {
		return false, err
	}
	return resp.VerificationStatus == "SUCCESS", nil
}

// centsToDecimal renders cents as the "12.34" form PayPal expects.
func centsToDecimal(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
