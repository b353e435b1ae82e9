package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// CatalogService manages the jobs, shifts and camping options members pick
// from, and serves the public camp catalog.
type CatalogService struct {
	categories     repository.JobCategoryRepository
	jobs           repository.JobRepository
	shifts         repository.ShiftRepository
	campingOptions repository.CampingOptionRepository
	audit          repository.AuditRepository
	camp           config.CampConfig
}

// CatalogDependencies bundles requirements for the catalog service.
type CatalogDependencies struct {
	JobCategoryRepo   repository.JobCategoryRepository
	JobRepo           repository.JobRepository
	ShiftRepo         repository.ShiftRepository
	CampingOptionRepo repository.CampingOptionRepository
	AuditRepo         repository.AuditRepository
}

// ShiftWithOccupancy pairs a shift with its current signup count.
type ShiftWithOccupancy struct {
	Shift       domain.Shift
	SignupCount int
}

// CampCatalog is the public registration catalog.
type CampCatalog struct {
	Year             int
	RegistrationOpen bool
	Currency         string
	CampingOptions   []domain.CampingOption
	Categories       []domain.JobCategory
	Jobs             []domain.Job
	Shifts           []ShiftWithOccupancy
}

// NewCatalogService constructs the service.
func NewCatalogService(camp config.CampConfig, deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		categories:     deps.JobCategoryRepo,
		jobs:           deps.JobRepo,
		shifts:         deps.ShiftRepo,
		campingOptions: deps.CampingOptionRepo,
		audit:          deps.AuditRepo,
		camp:           camp,
	}
}

// GetCatalog assembles the public camp configuration and sign-up catalog.
func (s *CatalogService) GetCatalog(ctx context.Context) (*CampCatalog, error) {
	options, err := s.campingOptions.List(ctx, true)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := s.shifts.List(ctx)
	if err != nil {
		return nil, err
	}

	withOccupancy := make([]ShiftWithOccupancy, 0, len(shifts))
	for _, shift := range shifts {
		count, err := s.shifts.CountSignups(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		withOccupancy = append(withOccupancy, ShiftWithOccupancy{Shift: shift, SignupCount: count})
	}

	return &CampCatalog{
		Year:             s.camp.Year,
		RegistrationOpen: s.camp.RegistrationOpen,
		Currency:         s.camp.Currency,
		CampingOptions:   options,
		Categories:       categories,
		Jobs:             jobs,
		Shifts:           withOccupancy,
	}, nil
}

// CreateJobCategory adds a category.
func (s *CatalogService) CreateJobCategory(ctx context.Context, admin *domain.User, category *domain.JobCategory) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionCreate, domain.AuditTargetJobCategory, category.ID, nil, map[string]any{"name": category.Name})
}

// UpdateJobCategory updates a category.
func (s *CatalogService) UpdateJobCategory(ctx context.Context, admin *domain.User, category *domain.JobCategory) error {
	existing, err := s.categories.GetByID(ctx, category.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job category", nil)
		}
		return err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionUpdate, domain.AuditTargetJobCategory, category.ID,
		map[string]any{"name": existing.Name, "description": existing.Description},
		map[string]any{"name": category.Name, "description": category.Description})
}

// DeleteJobCategory removes a category with no jobs attached.
func (s *CatalogService) DeleteJobCategory(ctx context.Context, admin *domain.User, id string) error {
	jobs, err := s.jobs.List(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job.CategoryID == id {
			return apperrors.NewConflict("category has jobs attached", map[string]any{"job_id": job.ID})
		}
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job category", nil)
		}
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionDelete, domain.AuditTargetJobCategory, id, nil, nil)
}

// CreateJob adds a job under an existing category.
func (s *CatalogService) CreateJob(ctx context.Context, admin *domain.User, job *domain.Job) error {
	job.Name = strings.TrimSpace(job.Name)
	if job.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if _, err := s.categories.GetByID(ctx, job.CategoryID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job category", nil)
		}
		return err
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionCreate, domain.AuditTargetJob, job.ID, nil, map[string]any{"name": job.Name})
}

// UpdateJob updates a job.
func (s *CatalogService) UpdateJob(ctx context.Context, admin *domain.User, job *domain.Job) error {
	existing, err := s.jobs.GetByID(ctx, job.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job", nil)
		}
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionUpdate, domain.AuditTargetJob, job.ID,
		map[string]any{"name": existing.Name, "staff_only": existing.StaffOnly},
		map[string]any{"name": job.Name, "staff_only": job.StaffOnly})
}

// DeleteJob removes a job with no shifts attached.
func (s *CatalogService) DeleteJob(ctx context.Context, admin *domain.User, id string) error {
	shifts, err := s.shifts.ListByJob(ctx, id)
	if err != nil {
		return err
	}
	if len(shifts) > 0 {
		return apperrors.NewConflict("job has shifts attached", map[string]any{"shift_count": len(shifts)})
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job", nil)
		}
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionDelete, domain.AuditTargetJob, id, nil, nil)
}

// CreateShift adds a shift under an existing job.
func (s *CatalogService) CreateShift(ctx context.Context, admin *domain.User, shift *domain.Shift) error {
	if _, err := s.jobs.GetByID(ctx, shift.JobID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("job", nil)
		}
		return err
	}
	if shift.MaxRegistrations < 0 {
		return apperrors.NewValidationError("max_registrations cannot be negative", nil)
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionCreate, domain.AuditTargetShift, shift.ID, nil,
		map[string]any{"job_id": shift.JobID, "day": shift.Day, "max_registrations": shift.MaxRegistrations})
}

// UpdateShift updates a shift. Reducing capacity below the current signup
// count is rejected.
func (s *CatalogService) UpdateShift(ctx context.Context, admin *domain.User, shift *domain.Shift) error {
	existing, err := s.shifts.GetByID(ctx, shift.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("shift", nil)
		}
		return err
	}
	if shift.MaxRegistrations > 0 {
		count, err := s.shifts.CountSignups(ctx, shift.ID)
		if err != nil {
			return err
		}
		if count > shift.MaxRegistrations {
			return apperrors.NewConflict("capacity below current signups", map[string]any{"signup_count": count})
		}
	}
	if err := s.shifts.Update(ctx, shift); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionUpdate, domain.AuditTargetShift, shift.ID,
		map[string]any{"day": existing.Day, "max_registrations": existing.MaxRegistrations},
		map[string]any{"day": shift.Day, "max_registrations": shift.MaxRegistrations})
}

// DeleteShift removes a shift nobody signed up for.
func (s *CatalogService) DeleteShift(ctx context.Context, admin *domain.User, id string) error {
	count, err := s.shifts.CountSignups(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("shift has signups", map[string]any{"signup_count": count})
	}
	if err := s.shifts.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("shift", nil)
		}
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionDelete, domain.AuditTargetShift, id, nil, nil)
}

// CreateCampingOption adds a camping option.
func (s *CatalogService) CreateCampingOption(ctx context.Context, admin *domain.User, option *domain.CampingOption) error {
	option.Name = strings.TrimSpace(option.Name)
	if option.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if option.ParticipantDuesCents < 0 || option.StaffDuesCents < 0 {
		return apperrors.NewValidationError("dues cannot be negative", nil)
	}
	if err := s.campingOptions.Create(ctx, option); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionCreate, domain.AuditTargetCampingOption, option.ID, nil,
		map[string]any{"name": option.Name, "participant_dues_cents": option.ParticipantDuesCents})
}

// UpdateCampingOption updates a camping option.
func (s *CatalogService) UpdateCampingOption(ctx context.Context, admin *domain.User, option *domain.CampingOption) error {
	existing, err := s.campingOptions.GetByID(ctx, option.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("camping option", nil)
		}
		return err
	}
	if err := s.campingOptions.Update(ctx, option); err != nil {
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionUpdate, domain.AuditTargetCampingOption, option.ID,
		map[string]any{"name": existing.Name, "enabled": existing.Enabled, "participant_dues_cents": existing.ParticipantDuesCents},
		map[string]any{"name": option.Name, "enabled": option.Enabled, "participant_dues_cents": option.ParticipantDuesCents})
}

// SetCampingOptionEnabled flips an option's availability without touching
// the rest of its fields.
func (s *CatalogService) SetCampingOptionEnabled(ctx context.Context, admin *domain.User, id string, enabled bool) (*domain.CampingOption, error) {
	option, err := s.campingOptions.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("camping option", nil)
		}
		return nil, err
	}
	if option.Enabled == enabled {
		return option, nil
	}
	wasEnabled := option.Enabled
	option.Enabled = enabled
	if err := s.campingOptions.Update(ctx, option); err != nil {
		return nil, err
	}
	if err := s.recordAudit(ctx, admin, domain.AuditActionUpdate, domain.AuditTargetCampingOption, option.ID,
		map[string]any{"enabled": wasEnabled},
		map[string]any{"enabled": enabled}); err != nil {
		return nil, err
	}
	return option, nil
}

// DeleteCampingOption removes an option nobody signed up for.
func (s *CatalogService) DeleteCampingOption(ctx context.Context, admin *domain.User, id string) error {
	count, err := s.campingOptions.CountSignups(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("camping option has signups", map[string]any{"signup_count": count})
	}
	if err := s.campingOptions.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("camping option", nil)
		}
		return err
	}
	return s.recordAudit(ctx, admin, domain.AuditActionDelete, domain.AuditTargetCampingOption, id, nil, nil)
}

func (s *CatalogService) recordAudit(ctx context.Context, admin *domain.User, action domain.AuditAction, target domain.AuditTargetType, targetID string, oldValue, newValue map[string]any) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Create(ctx, &domain.AdminAudit{
		AdminUserID:   admin.ID,
		Action:        action,
		TargetType:    target,
		TargetID:      targetID,
		OldValue:      oldValue,
		NewValue:      newValue,
		TransactionID: uuid.NewString(),
	})
}
