package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/camp-registration/internal/api/dto"
	"github.com/spec-kit/camp-registration/internal/auth"
	"github.com/spec-kit/camp-registration/internal/service"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// ProfileHandler exposes self-service account endpoints.
type ProfileHandler struct {
	users         *service.UserService
	notifications *service.NotificationService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(userService *service.UserService, notificationService *service.NotificationService) *ProfileHandler {
	return &ProfileHandler{users: userService, notifications: notificationService}
}

// GetProfile GET /me.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	user, err := h.users.GetProfile(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateProfile PATCH /me.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.UpdateProfile(c.Context(), principal.User.ID, service.ProfileUpdate{
		Name:             req.Name,
		PlayaName:        req.PlayaName,
		Phone:            req.Phone,
		EmergencyContact: req.EmergencyContact,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ListNotifications GET /me/notifications.
func (h *ProfileHandler) ListNotifications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseQueryInt(c.Query("page"), 1)
	pageSize := parseQueryInt(c.Query("page_size"), 20)
	notifications, err := h.notifications.ListForUser(c.Context(), principal.User.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Subject:   n.Subject,
			Body:      n.Body,
			SentAt:    n.SentAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseQueryInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
