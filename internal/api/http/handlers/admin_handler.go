package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/camp-registration/internal/api/dto"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/observability"
	"github.com/spec-kit/camp-registration/internal/repository"
	"github.com/spec-kit/camp-registration/internal/service"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// AdminHandler exposes back-office registration and account endpoints.
type AdminHandler struct {
	admin    *service.AdminService
	users    *service.UserService
	payments *service.PaymentService
	metrics  *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, userService *service.UserService, paymentService *service.PaymentService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{admin: adminService, users: userService, payments: paymentService, metrics: metrics}
}

// ListRegistrations GET /admin/registrations.
func (h *AdminHandler) ListRegistrations(c *fiber.Ctx) error {
	filter := parseRegistrationQuery(c)
	registrations, err := h.admin.ListRegistrations(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RegistrationResponse, 0, len(registrations))
	for i := range registrations {
		items = append(items, registrationResponse(&registrations[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRegistration GET /admin/registrations/:id.
func (h *AdminHandler) GetRegistration(c *fiber.Ctx) error {
	detail, err := h.admin.GetRegistration(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": registrationDetailResponse(detail)})
}

// UpdateRegistration PUT /admin/registrations/:id.
func (h *AdminHandler) UpdateRegistration(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.admin.UpdateRegistration(c.Context(), admin, c.Params("id"), service.AdminRegistrationUpdate{
		Status:           req.Status,
		ArrivalDate:      req.ArrivalDate,
		DepartureDate:    req.DepartureDate,
		Notes:            req.Notes,
		ShiftIDs:         req.ShiftIDs,
		CampingOptionIDs: req.CampingOptionIDs,
		Reason:           req.Reason,
		Notify:           req.Notify,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     registrationDetailResponse(result.Detail),
		"notified": result.Notified,
	})
}

// CancelRegistration POST /admin/registrations/:id/cancel.
func (h *AdminHandler) CancelRegistration(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AdminCancelRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.admin.CancelRegistration(c.Context(), admin, c.Params("id"), req.Reason, req.IssueRefund)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CancelRegistrationResponse{
		Registration:  registrationResponse(&result.Registration),
		RefundedCents: result.RefundedCents,
		ManualRefund:  result.ManualRefund,
		Message:       result.Message,
	}})
}

// RefundPayment POST /admin/payments/:id/refund.
func (h *AdminHandler) RefundPayment(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	// omitted or zero amount means a full refund of the refundable balance
	payment, err := h.payments.Refund(c.Context(), admin.ID, c.Params("id"), req.AmountCents, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": paymentResponse(payment)})
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{}
	if role := c.Query("role"); role != "" {
		r := domain.UserRole(strings.ToUpper(role))
		filter.Role = &r
	}
	if status := c.Query("status"); status != "" {
		s := domain.UserStatus(strings.ToUpper(status))
		filter.Status = &s
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	users, err := h.users.ListUsers(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /admin/users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.AdminUpdateUser(c.Context(), admin, c.Params("id"), service.AdminUserUpdate{
		Role:   req.Role,
		Status: req.Status,
		Reason: req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ListAudit GET /admin/audit.
func (h *AdminHandler) ListAudit(c *fiber.Ctx) error {
	filter := repository.AuditFilter{}
	if adminID := c.Query("admin_user_id"); adminID != "" {
		filter.AdminUserID = &adminID
	}
	if action := c.Query("action"); action != "" {
		a := domain.AuditAction(strings.ToUpper(action))
		filter.Action = &a
	}
	if targetType := c.Query("target_type"); targetType != "" {
		t := domain.AuditTargetType(strings.ToUpper(targetType))
		filter.TargetType = &t
	}
	if targetID := c.Query("target_id"); targetID != "" {
		filter.TargetID = &targetID
	}
	page := parseQueryInt(c.Query("page"), 1)
	pageSize := parseQueryInt(c.Query("page_size"), 50)
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	entries, err := h.admin.ListAudit(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, auditEntryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	requests, errors, payments := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": dto.StatsResponse{
		Requests: requests,
		Errors:   errors,
		Payments: payments,
	}})
}

func parseRegistrationQuery(c *fiber.Ctx) repository.RegistrationFilter {
	filter := repository.RegistrationFilter{}
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if year := parseQueryInt(c.Query("year"), 0); year > 0 {
		filter.Year = &year
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.RegistrationStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if search := c.Query("email"); search != "" {
		filter.EmailSearch = &search
	}
	if from := parseTimeQuery(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTimeQuery(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseQueryInt(c.Query("page"), 1)
	pageSize := parseQueryInt(c.Query("page_size"), 20)
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	return filter
}

func parseTimeQuery(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
