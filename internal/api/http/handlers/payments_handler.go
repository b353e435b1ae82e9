package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/camp-registration/internal/api/dto"
	"github.com/spec-kit/camp-registration/internal/auth"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/service"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// PaymentsHandler manages member payment endpoints.
type PaymentsHandler struct {
	service *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(paymentService *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{service: paymentService}
}

// Start POST /payments.
func (h *PaymentsHandler) Start(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.StartPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	switch req.Provider {
	case domain.ProviderStripe, domain.ProviderPayPal:
	default:
		return apperrors.NewValidationError("unknown provider", map[string]any{"provider": req.Provider})
	}

	intent, err := h.service.StartPayment(c.Context(), principal.User, req.Provider)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PaymentIntentResponse{
		Payment:     paymentResponse(&intent.Payment),
		ClientToken: intent.ClientToken,
	}})
}

// Capture POST /payments/:id/capture. PayPal orders are captured server
// side after the member approves the order in the PayPal popup.
func (h *PaymentsHandler) Capture(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	payment, err := h.service.CapturePayment(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": paymentResponse(payment)})
}

// ListMine GET /payments/me.
func (h *PaymentsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseQueryInt(c.Query("page"), 1)
	pageSize := parseQueryInt(c.Query("page_size"), 20)
	payments, err := h.service.ListForUser(c.Context(), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, paymentResponse(&payments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
