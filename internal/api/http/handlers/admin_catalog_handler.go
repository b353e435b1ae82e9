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

// AdminCatalogHandler manages jobs, shifts and camping options.
type AdminCatalogHandler struct {
	service *service.CatalogService
}

// NewAdminCatalogHandler constructs handler.
func NewAdminCatalogHandler(catalogService *service.CatalogService) *AdminCatalogHandler {
	return &AdminCatalogHandler{service: catalogService}
}

func adminFromContext(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal.User, nil
}

// CreateJobCategory POST /admin/job-categories.
func (h *AdminCatalogHandler) CreateJobCategory(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertJobCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category := domain.JobCategory{Name: req.Name, Description: req.Description}
	if err := h.service.CreateJobCategory(c.Context(), admin, &category); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.JobCategoryResponse{
		ID: category.ID, Name: category.Name, Description: category.Description,
	}})
}

// UpdateJobCategory PUT /admin/job-categories/:id.
func (h *AdminCatalogHandler) UpdateJobCategory(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertJobCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category := domain.JobCategory{ID: c.Params("id"), Name: req.Name, Description: req.Description}
	if err := h.service.UpdateJobCategory(c.Context(), admin, &category); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.JobCategoryResponse{
		ID: category.ID, Name: category.Name, Description: category.Description,
	}})
}

// DeleteJobCategory DELETE /admin/job-categories/:id.
func (h *AdminCatalogHandler) DeleteJobCategory(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteJobCategory(c.Context(), admin, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateJob POST /admin/jobs.
func (h *AdminCatalogHandler) CreateJob(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	job := domain.Job{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Location:       req.Location,
		StaffOnly:      req.StaffOnly,
		AlwaysRequired: req.AlwaysRequired,
	}
	if err := h.service.CreateJob(c.Context(), admin, &job); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": jobResponse(&job)})
}

// UpdateJob PUT /admin/jobs/:id.
func (h *AdminCatalogHandler) UpdateJob(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	job := domain.Job{
		ID:             c.Params("id"),
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Location:       req.Location,
		StaffOnly:      req.StaffOnly,
		AlwaysRequired: req.AlwaysRequired,
	}
	if err := h.service.UpdateJob(c.Context(), admin, &job); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(&job)})
}

// DeleteJob DELETE /admin/jobs/:id.
func (h *AdminCatalogHandler) DeleteJob(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteJob(c.Context(), admin, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateShift POST /admin/shifts.
func (h *AdminCatalogHandler) CreateShift(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	shift := domain.Shift{
		JobID:            req.JobID,
		Name:             req.Name,
		Day:              req.Day,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		MaxRegistrations: req.MaxRegistrations,
	}
	if err := h.service.CreateShift(c.Context(), admin, &shift); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": shiftResponse(&shift, 0)})
}

// UpdateShift PUT /admin/shifts/:id.
func (h *AdminCatalogHandler) UpdateShift(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	shift := domain.Shift{
		ID:               c.Params("id"),
		JobID:            req.JobID,
		Name:             req.Name,
		Day:              req.Day,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		MaxRegistrations: req.MaxRegistrations,
	}
	if err := h.service.UpdateShift(c.Context(), admin, &shift); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shiftResponse(&shift, 0)})
}

// DeleteShift DELETE /admin/shifts/:id.
func (h *AdminCatalogHandler) DeleteShift(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteShift(c.Context(), admin, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateCampingOption POST /admin/camping-options.
func (h *AdminCatalogHandler) CreateCampingOption(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertCampingOptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	option := campingOptionFromRequest("", req)
	if err := h.service.CreateCampingOption(c.Context(), admin, &option); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": campingOptionResponse(&option)})
}

// UpdateCampingOption PUT /admin/camping-options/:id.
func (h *AdminCatalogHandler) UpdateCampingOption(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpsertCampingOptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	option := campingOptionFromRequest(c.Params("id"), req)
	if err := h.service.UpdateCampingOption(c.Context(), admin, &option); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": campingOptionResponse(&option)})
}

// SetCampingOptionEnabled PATCH /admin/camping-options/:id.
func (h *AdminCatalogHandler) SetCampingOptionEnabled(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	var req dto.SetCampingOptionEnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Enabled == nil {
		return apperrors.NewValidationError("enabled is required", nil)
	}
	option, err := h.service.SetCampingOptionEnabled(c.Context(), admin, c.Params("id"), *req.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": campingOptionResponse(option)})
}

// DeleteCampingOption DELETE /admin/camping-options/:id.
func (h *AdminCatalogHandler) DeleteCampingOption(c *fiber.Ctx) error {
	admin, err := adminFromContext(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteCampingOption(c.Context(), admin, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func campingOptionFromRequest(id string, req dto.UpsertCampingOptionRequest) domain.CampingOption {
	return domain.CampingOption{
		ID:                   id,
		Name:                 req.Name,
		Description:          req.Description,
		Enabled:              req.Enabled,
		WorkShiftsRequired:   req.WorkShiftsRequired,
		ParticipantDuesCents: req.ParticipantDuesCents,
		StaffDuesCents:       req.StaffDuesCents,
		MaxSignups:           req.MaxSignups,
	}
}
