package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/payments"
	"github.com/spec-kit/camp-registration/internal/service"
)

// ReplayGuard deduplicates provider webhook events. Marking must be
// reversible so a failed delivery can be retried by the provider.
type ReplayGuard interface {
	MarkWebhookEvent(ctx context.Context, provider, eventID string) bool
	UnmarkWebhookEvent(ctx context.Context, provider, eventID string)
}

// WebhooksHandler receives asynchronous payment provider callbacks.
// Providers retry on non-2xx, so everything that is not a signature failure
// answers 200 even when the event is unknown or already seen.
type WebhooksHandler struct {
	payments      *service.PaymentService
	replay        ReplayGuard
	paypalGateway *payments.PayPalGateway
	stripeCfg     config.StripeConfig
	paypalCfg     config.PayPalConfig
	logger        *zap.Logger
}

// NewWebhooksHandler constructs handler.
func NewWebhooksHandler(paymentService *service.PaymentService, replay ReplayGuard, paypalGateway *payments.PayPalGateway, stripeCfg config.StripeConfig, paypalCfg config.PayPalConfig, logger *zap.Logger) *WebhooksHandler {
	return &WebhooksHandler{
		payments:      paymentService,
		replay:        replay,
		paypalGateway: paypalGateway,
		stripeCfg:     stripeCfg,
		paypalCfg:     paypalCfg,
		logger:        logger,
	}
}

// Stripe POST /webhooks/stripe.
func (h *WebhooksHandler) Stripe(c *fiber.Ctx) error {
	payload := c.Body()
	event, err := webhook.ConstructEvent(payload, c.Get("Stripe-Signature"), h.stripeCfg.WebhookSecret)
	if err != nil {
		h.logger.Warn("stripe webhook signature rejected", zap.Error(err))
		return c.SendStatus(http.StatusBadRequest)
	}

	if seen := h.replay.MarkWebhookEvent(c.Context(), "stripe", event.ID); seen {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			h.logger.Warn("stripe webhook payload unreadable", zap.String("event_id", event.ID), zap.Error(err))
			return c.JSON(fiber.Map{"received": true})
		}
		if err := h.payments.MarkCompletedByProviderRef(c.Context(), intent.ID); err != nil {
			return h.retryLater(c, "stripe", event.ID, err)
		}
	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			h.logger.Warn("stripe webhook payload unreadable", zap.String("event_id", event.ID), zap.Error(err))
			return c.JSON(fiber.Map{"received": true})
		}
		if err := h.payments.MarkFailedByProviderRef(c.Context(), intent.ID); err != nil {
			return h.retryLater(c, "stripe", event.ID, err)
		}
	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			h.logger.Warn("stripe webhook payload unreadable", zap.String("event_id", event.ID), zap.Error(err))
			return c.JSON(fiber.Map{"received": true})
		}
		if charge.PaymentIntent == nil {
			return c.JSON(fiber.Map{"received": true})
		}
		// amount_refunded is the cumulative total on the charge, not the
		// size of this refund
		if err := h.payments.ReconcileProviderRefund(c.Context(), charge.PaymentIntent.ID, charge.AmountRefunded); err != nil {
			return h.retryLater(c, "stripe", event.ID, err)
		}
	default:
		h.logger.Debug("stripe webhook ignored", zap.String("type", string(event.Type)))
	}
	return c.JSON(fiber.Map{"received": true})
}

type paypalWebhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

type paypalCaptureResource struct {
	ID     string `json:"id"`
	Amount struct {
		Value string `json:"value"`
	} `json:"amount"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// PayPal POST /webhooks/paypal.
func (h *WebhooksHandler) PayPal(c *fiber.Ctx) error {
	payload := c.Body()

	if h.paypalCfg.WebhookID != "" && h.paypalGateway != nil {
		verified, err := h.paypalGateway.VerifyWebhook(c.Context(), paypalVerifyRequest(c, payload), h.paypalCfg.WebhookID)
		if err != nil || !verified {
			h.logger.Warn("paypal webhook signature rejected", zap.Error(err))
			return c.SendStatus(http.StatusBadRequest)
		}
	}

	var event paypalWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return c.SendStatus(http.StatusBadRequest)
	}
	if event.ID == "" {
		return c.SendStatus(http.StatusBadRequest)
	}

	if seen := h.replay.MarkWebhookEvent(c.Context(), "paypal", event.ID); seen {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	var resource paypalCaptureResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		h.logger.Warn("paypal webhook resource unreadable", zap.String("event_id", event.ID), zap.Error(err))
		return c.JSON(fiber.Map{"received": true})
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		if err := h.payments.MarkCompletedByProviderRef(c.Context(), resource.ID); err != nil {
			return h.retryLater(c, "paypal", event.ID, err)
		}
	case "PAYMENT.CAPTURE.DENIED":
		if err := h.payments.MarkFailedByProviderRef(c.Context(), resource.ID); err != nil {
			return h.retryLater(c, "paypal", event.ID, err)
		}
	case "PAYMENT.CAPTURE.REFUNDED":
		// the refund resource points back at its capture via the "up" link
		captureID := paypalUpLinkID(resource)
		if captureID == "" {
			h.logger.Warn("paypal refund webhook without capture link", zap.String("event_id", event.ID))
			return c.JSON(fiber.Map{"received": true})
		}
		cents, err := paypalDecimalToCents(resource.Amount.Value)
		if err != nil {
			h.logger.Warn("paypal refund webhook with bad amount", zap.String("event_id", event.ID), zap.Error(err))
			return c.JSON(fiber.Map{"received": true})
		}
		if err := h.payments.ApplyProviderRefund(c.Context(), captureID, cents); err != nil {
			return h.retryLater(c, "paypal", event.ID, err)
		}
	default:
		h.logger.Debug("paypal webhook ignored", zap.String("type", event.EventType))
	}
	return c.JSON(fiber.Map{"received": true})
}

// retryLater releases the replay mark so the provider's retry of this event
// is processed instead of being answered as a duplicate.
func (h *WebhooksHandler) retryLater(c *fiber.Ctx, provider, eventID string, err error) error {
	h.replay.UnmarkWebhookEvent(c.Context(), provider, eventID)
	return err
}

// paypalVerifyRequest rebuilds the incoming request for signature checks.
func paypalVerifyRequest(c *fiber.Ctx, payload []byte) *http.Request {
	req, _ := http.NewRequestWithContext(c.Context(), http.MethodPost, "/", bytes.NewReader(payload))
	for _, header := range []string{
		"Paypal-Auth-Algo",
		"Paypal-Cert-Url",
		"Paypal-Transmission-Id",
		"Paypal-Transmission-Sig",
		"Paypal-Transmission-Time",
	} {
		if val := c.Get(header); val != "" {
			req.Header.Set(header, val)
		}
	}
	req.Body = io.NopCloser(bytes.NewReader(payload))
	return req
}

func paypalUpLinkID(resource paypalCaptureResource) string {
	for _, link := range resource.Links {
		if link.Rel != "up" {
			continue
		}
		parts := strings.Split(strings.TrimRight(link.Href, "/"), "/")
		if len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}
	return ""
}

func paypalDecimalToCents(value string) (int64, error) {
	whole, frac := value, "0"
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		whole, frac = value[:idx], value[idx+1:]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	cents, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return 0, err
	}
	return dollars*100 + cents, nil
}
