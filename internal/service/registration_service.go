package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// RegistrationService coordinates camp sign-up workflows.
type RegistrationService struct {
	registrations  repository.RegistrationRepository
	signups        repository.SignupRepository
	shifts         repository.ShiftRepository
	jobs           repository.JobRepository
	campingOptions repository.CampingOptionRepository
	payments       repository.PaymentRepository
	tx             repository.TxManager
	dispatcher     events.Dispatcher
	camp           config.CampConfig
}

// RegistrationDependencies bundles requirements for the service.
type RegistrationDependencies struct {
	RegistrationRepo  repository.RegistrationRepository
	SignupRepo        repository.SignupRepository
	ShiftRepo         repository.ShiftRepository
	JobRepo           repository.JobRepository
	CampingOptionRepo repository.CampingOptionRepository
	PaymentRepo       repository.PaymentRepository
	TxManager         repository.TxManager
	Dispatcher        events.Dispatcher
}

// RegistrationCreateInput describes a member's sign-up payload.
type RegistrationCreateInput struct {
	CampingOptionIDs []string
	ShiftIDs         []string
	ArrivalDate      *time.Time
	DepartureDate    *time.Time
	Notes            string
}

// RegistrationDetail is a registration with its resolved associations.
type RegistrationDetail struct {
	Registration   domain.Registration
	ShiftSignups   []domain.ShiftSignup
	CampingSignups []domain.CampingOptionSignup
	Payments       []domain.Payment
}

// NewRegistrationService constructs the service.
func NewRegistrationService(camp config.CampConfig, deps RegistrationDependencies) *RegistrationService {
	return &RegistrationService{
		registrations:  deps.RegistrationRepo,
		signups:        deps.SignupRepo,
		shifts:         deps.ShiftRepo,
		jobs:           deps.JobRepo,
		campingOptions: deps.CampingOptionRepo,
		payments:       deps.PaymentRepo,
		tx:             deps.TxManager,
		dispatcher:     deps.Dispatcher,
		camp:           camp,
	}
}

// Create signs a user up for the active camp year. Joins, dues and the
// pending payment are created atomically.
func (s *RegistrationService) Create(ctx context.Context, user *domain.User, input RegistrationCreateInput) (*RegistrationDetail, error) {
	if !s.camp.RegistrationOpen {
		return nil, apperrors.NewForbidden("registration is closed")
	}
	if len(input.CampingOptionIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one camping option required", nil)
	}
	if input.ArrivalDate != nil && input.DepartureDate != nil && input.ArrivalDate.After(*input.DepartureDate) {
		return nil, apperrors.NewValidationError("arrival date cannot be after departure date", nil)
	}

	if _, err := s.registrations.GetByUserAndYear(ctx, user.ID, s.camp.Year); err == nil {
		return nil, apperrors.NewConflict("already registered for this year", map[string]any{"year": s.camp.Year})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	options, duesCents, err := s.validateCampingOptions(ctx, input.CampingOptionIDs, user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.validateShifts(ctx, input.ShiftIDs, user, options); err != nil {
		return nil, err
	}

	detail := &RegistrationDetail{}
	err = s.tx.WithinTx(ctx, func(r repository.Repos) error {
		reg := &domain.Registration{
			UserID:        user.ID,
			Year:          s.camp.Year,
			Status:        domain.RegistrationStatusPending,
			ArrivalDate:   input.ArrivalDate,
			DepartureDate: input.DepartureDate,
			Notes:         input.Notes,
		}
		if err := r.Registrations.Create(ctx, reg); err != nil {
			return err
		}
		detail.Registration = *reg

		for _, optionID := range input.CampingOptionIDs {
			signup := &domain.CampingOptionSignup{RegistrationID: reg.ID, CampingOptionID: optionID}
			if err := r.Signups.CreateCampingSignup(ctx, signup); err != nil {
				return err
			}
			detail.CampingSignups = append(detail.CampingSignups, *signup)
		}
		for _, shiftID := range input.ShiftIDs {
			if err := checkShiftCapacity(ctx, r.Shifts, shiftID); err != nil {
				return err
			}
			signup := &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: shiftID}
			if err := r.Signups.CreateShiftSignup(ctx, signup); err != nil {
				return err
			}
			detail.ShiftSignups = append(detail.ShiftSignups, *signup)
		}

		if duesCents > 0 {
			payment := &domain.Payment{
				UserID:         user.ID,
				RegistrationID: reg.ID,
				AmountCents:    duesCents,
				Currency:       s.camp.Currency,
				Provider:       domain.ProviderStripe,
				Status:         domain.PaymentStatusPending,
			}
			if err := r.Payments.Create(ctx, payment); err != nil {
				return err
			}
			detail.Payments = append(detail.Payments, *payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:           events.EventRegistrationCreated,
		RegistrationID: detail.Registration.ID,
		Actor:          events.Actor{UserID: user.ID, Role: user.Role},
		Payload: events.RegistrationCreatedPayload{
			UserID:    user.ID,
			Year:      s.camp.Year,
			DuesCents: duesCents,
		},
	})
	return detail, nil
}

// GetForUser fetches the caller's registration for the active year.
func (s *RegistrationService) GetForUser(ctx context.Context, userID string) (*RegistrationDetail, error) {
	reg, err := s.registrations.GetByUserAndYear(ctx, userID, s.camp.Year)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
	return s.loadDetail(ctx, reg)
}

func (s *RegistrationService) loadDetail(ctx context.Context, reg *domain.Registration) (*RegistrationDetail, error) {
	shiftSignups, err := s.signups.ListShiftSignups(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	campingSignups, err := s.signups.ListCampingSignups(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByRegistration(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	return &RegistrationDetail{
		Registration:   *reg,
		ShiftSignups:   shiftSignups,
		CampingSignups: campingSignups,
		Payments:       payments,
	}, nil
}

func (s *RegistrationService) validateCampingOptions(ctx context.Context, optionIDs []string, role domain.UserRole) ([]domain.CampingOption, int64, error) {
	seen := make(map[string]struct{}, len(optionIDs))
	options := make([]domain.CampingOption, 0, len(optionIDs))
	var duesCents int64

	for _, id := range optionIDs {
		if _, dup := seen[id]; dup {
			return nil, 0, apperrors.NewValidationError("duplicate camping option", map[string]any{"camping_option_id": id})
		}
		seen[id] = struct{}{}

		option, err := s.campingOptions.GetByID(ctx, id)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, 0, apperrors.NewNotFound("camping option", map[string]any{"camping_option_id": id})
			}
			return nil, 0, err
		}
		if !option.Enabled {
			return nil, 0, apperrors.NewValidationError("camping option disabled", map[string]any{"camping_option_id": id})
		}
		if option.MaxSignups > 0 {
			count, err := s.campingOptions.CountSignups(ctx, id)
			if err != nil {
				return nil, 0, err
			}
			if count >= option.MaxSignups {
				return nil, 0, apperrors.NewConflict("camping option full", map[string]any{"camping_option_id": id})
			}
		}
		options = append(options, *option)
		duesCents += option.DuesFor(role)
	}
	return options, duesCents, nil
}

func (s *RegistrationService) validateShifts(ctx context.Context, shiftIDs []string, user *domain.User, options []domain.CampingOption) error {
	seen := make(map[string]struct{}, len(shiftIDs))
	coveredJobs := make(map[string]struct{}, len(shiftIDs))
	for _, id := range shiftIDs {
		if _, dup := seen[id]; dup {
			return apperrors.NewValidationError("duplicate shift", map[string]any{"shift_id": id})
		}
		seen[id] = struct{}{}

		shift, err := s.shifts.GetByID(ctx, id)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("shift", map[string]any{"shift_id": id})
			}
			return err
		}
		job, err := s.jobs.GetByID(ctx, shift.JobID)
		if err != nil {
			return err
		}
		if job.StaffOnly && !user.IsStaff() {
			return apperrors.NewForbidden("shift restricted to staff")
		}
		coveredJobs[job.ID] = struct{}{}
	}

	// Each camping option demands a number of work shifts; the strictest
	// selected option wins.
	required := 0
	for _, option := range options {
		if option.WorkShiftsRequired > required {
			required = option.WorkShiftsRequired
		}
	}
	if len(shiftIDs) < required {
		return apperrors.NewValidationError("not enough work shifts selected", map[string]any{
			"required": required,
			"selected": len(shiftIDs),
		})
	}

	// Members who owe work shifts must cover every always-required job.
	if required > 0 {
		jobs, err := s.jobs.List(ctx)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			if !job.AlwaysRequired {
				continue
			}
			if job.StaffOnly && !user.IsStaff() {
				continue
			}
			if _, ok := coveredJobs[job.ID]; !ok {
				return apperrors.NewValidationError("required job not covered", map[string]any{
					"job_id":   job.ID,
					"job_name": job.Name,
				})
			}
		}
	}
	return nil
}

func checkShiftCapacity(ctx context.Context, shifts repository.ShiftRepository, shiftID string) error {
	shift, err := shifts.GetByID(ctx, shiftID)
	if err != nil {
		return err
	}
	if shift.MaxRegistrations <= 0 {
		return nil
	}
	count, err := shifts.CountSignups(ctx, shiftID)
	if err != nil {
		return err
	}
	if count >= shift.MaxRegistrations {
		return apperrors.NewConflict("shift full", map[string]any{"shift_id": shiftID})
	}
	return nil
}

func (s *RegistrationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
