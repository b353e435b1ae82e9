package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/camp-registration/internal/api/dto"
	"github.com/spec-kit/camp-registration/internal/auth"
	"github.com/spec-kit/camp-registration/internal/service"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// RegistrationsHandler manages member registration endpoints.
type RegistrationsHandler struct {
	service *service.RegistrationService
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrationService *service.RegistrationService) *RegistrationsHandler {
	return &RegistrationsHandler{service: registrationService}
}

// Create POST /registrations.
func (h *RegistrationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.CampingOptionIDs) == 0 {
		return apperrors.NewValidationError("at least one camping option required", nil)
	}

	detail, err := h.service.Create(c.Context(), principal.User, service.RegistrationCreateInput{
		CampingOptionIDs: req.CampingOptionIDs,
		ShiftIDs:         req.ShiftIDs,
		ArrivalDate:      req.ArrivalDate,
		DepartureDate:    req.DepartureDate,
		Notes:            req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationDetailResponse(detail)})
}

// GetMine GET /registrations/me.
func (h *RegistrationsHandler) GetMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	detail, err := h.service.GetForUser(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": registrationDetailResponse(detail)})
}
