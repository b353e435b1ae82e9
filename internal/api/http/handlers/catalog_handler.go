package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/camp-registration/internal/api/dto"
	"github.com/spec-kit/camp-registration/internal/service"
)

// CatalogHandler serves the public registration catalog.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// GetCatalog GET /camp/config.
func (h *CatalogHandler) GetCatalog(c *fiber.Ctx) error {
	catalog, err := h.service.GetCatalog(c.Context())
	if err != nil {
		return err
	}

	resp := dto.CatalogResponse{
		Year:             catalog.Year,
		RegistrationOpen: catalog.RegistrationOpen,
		Currency:         catalog.Currency,
		CampingOptions:   make([]dto.CampingOptionResponse, 0, len(catalog.CampingOptions)),
		Categories:       make([]dto.JobCategoryResponse, 0, len(catalog.Categories)),
		Jobs:             make([]dto.JobResponse, 0, len(catalog.Jobs)),
		Shifts:           make([]dto.ShiftResponse, 0, len(catalog.Shifts)),
	}
	for i := range catalog.CampingOptions {
		resp.CampingOptions = append(resp.CampingOptions, campingOptionResponse(&catalog.CampingOptions[i]))
	}
	for _, category := range catalog.Categories {
		resp.Categories = append(resp.Categories, dto.JobCategoryResponse{
			ID:          category.ID,
			Name:        category.Name,
			Description: category.Description,
		})
	}
	for i := range catalog.Jobs {
		resp.Jobs = append(resp.Jobs, jobResponse(&catalog.Jobs[i]))
	}
	for i := range catalog.Shifts {
		resp.Shifts = append(resp.Shifts, shiftResponse(&catalog.Shifts[i].Shift, catalog.Shifts[i].SignupCount))
	}
	return c.JSON(fiber.Map{"data": resp})
}
