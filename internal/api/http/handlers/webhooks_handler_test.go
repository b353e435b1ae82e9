package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/observability"
	"github.com/spec-kit/camp-registration/internal/service"
)

type fakeReplayGuard struct {
	marked map[string]bool
}

func newFakeReplayGuard() *fakeReplayGuard {
	return &fakeReplayGuard{marked: map[string]bool{}}
}

func (g *fakeReplayGuard) MarkWebhookEvent(_ context.Context, provider, eventID string) bool {
	key := provider + ":" + eventID
	if g.marked[key] {
		return true
	}
	g.marked[key] = true
	return false
}

func (g *fakeReplayGuard) UnmarkWebhookEvent(_ context.Context, provider, eventID string) {
	delete(g.marked, provider+":"+eventID)
}

// flakyPaymentRepo fails GetByProviderRef a configured number of times before
// serving the stored payment.
type flakyPaymentRepo struct {
	failures int
	calls    int
	payment  *domain.Payment
}

func (r *flakyPaymentRepo) Create(_ context.Context, _ *domain.Payment) error { return nil }
func (r *flakyPaymentRepo) Update(_ context.Context, _ *domain.Payment) error { return nil }

func (r *flakyPaymentRepo) GetByID(_ context.Context, _ string) (*domain.Payment, error) {
	return nil, pgx.ErrNoRows
}

func (r *flakyPaymentRepo) GetByProviderRef(_ context.Context, providerRef string) (*domain.Payment, error) {
	r.calls++
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("connection reset")
	}
	if r.payment != nil && r.payment.ProviderRef != nil && *r.payment.ProviderRef == providerRef {
		return r.payment, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *flakyPaymentRepo) ListByRegistration(_ context.Context, _ string) ([]domain.Payment, error) {
	return nil, nil
}

func (r *flakyPaymentRepo) ListByUser(_ context.Context, _ string, _, _ int) ([]domain.Payment, error) {
	return nil, nil
}

func newWebhookApp(repo *flakyPaymentRepo, guard *fakeReplayGuard) *fiber.App {
	svc := service.NewPaymentService(config.CampConfig{Year: 2026}, service.PaymentDependencies{
		PaymentRepo: repo,
		Metrics:     observability.NewMetrics(),
	})
	handler := NewWebhooksHandler(svc, guard, nil, config.StripeConfig{}, config.PayPalConfig{}, zap.NewNop())
	app := fiber.New()
	app.Post("/webhooks/paypal", handler.PayPal)
	return app
}

func postPayPalEvent(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/paypal", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded := map[string]any{}
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func TestPayPalWebhookFailedDeliveryIsRetriable(t *testing.T) {
	ref := "cap_1"
	repo := &flakyPaymentRepo{
		failures: 1,
		payment:  &domain.Payment{ID: "pay-1", ProviderRef: &ref, Status: domain.PaymentStatusCompleted},
	}
	guard := newFakeReplayGuard()
	app := newWebhookApp(repo, guard)

	body := `{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"cap_1"}}`

	status, _ := postPayPalEvent(t, app, body)
	assert.Equal(t, 500, status)
	assert.False(t, guard.marked["paypal:WH-1"], "failed delivery must release its replay mark")

	// The provider retries the same event id; it must be processed, not
	// answered as a duplicate.
	status, decoded := postPayPalEvent(t, app, body)
	assert.Equal(t, 200, status)
	assert.NotContains(t, decoded, "duplicate")
	assert.Equal(t, 2, repo.calls)
}

func TestPayPalWebhookDuplicateAfterSuccess(t *testing.T) {
	ref := "cap_1"
	repo := &flakyPaymentRepo{
		payment: &domain.Payment{ID: "pay-1", ProviderRef: &ref, Status: domain.PaymentStatusCompleted},
	}
	guard := newFakeReplayGuard()
	app := newWebhookApp(repo, guard)

	body := `{"id":"WH-2","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"cap_1"}}`

	status, _ := postPayPalEvent(t, app, body)
	require.Equal(t, 200, status)

	status, decoded := postPayPalEvent(t, app, body)
	assert.Equal(t, 200, status)
	assert.Equal(t, true, decoded["duplicate"])
	assert.Equal(t, 1, repo.calls)
}
