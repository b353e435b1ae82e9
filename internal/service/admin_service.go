package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// Refunder issues a refund for a payment on behalf of an admin.
type Refunder interface {
	Refund(ctx context.Context, adminUserID, paymentID string, amountCents int64, reason string) (*domain.Payment, error)
}

// AdminService coordinates back-office registration workflows.
type AdminService struct {
	registrations  repository.RegistrationRepository
	signups        repository.SignupRepository
	shifts         repository.ShiftRepository
	campingOptions repository.CampingOptionRepository
	payments       repository.PaymentRepository
	audit          repository.AuditRepository
	tx             repository.TxManager
	refunder       Refunder
	dispatcher     events.Dispatcher
	logger         *zap.Logger
}

// AdminDependencies bundles requirements for the admin service.
type AdminDependencies struct {
	RegistrationRepo  repository.RegistrationRepository
	SignupRepo        repository.SignupRepository
	ShiftRepo         repository.ShiftRepository
	CampingOptionRepo repository.CampingOptionRepository
	PaymentRepo       repository.PaymentRepository
	AuditRepo         repository.AuditRepository
	TxManager         repository.TxManager
	Refunder          Refunder
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// AdminRegistrationUpdate describes an admin edit. Nil fields are untouched;
// ShiftIDs and CampingOptionIDs, when set, are the desired final sets.
type AdminRegistrationUpdate struct {
	Status           *domain.RegistrationStatus
	ArrivalDate      *time.Time
	DepartureDate    *time.Time
	Notes            *string
	ShiftIDs         *[]string
	CampingOptionIDs *[]string
	Reason           string
	Notify           bool
}

// UpdateResult reports an applied admin edit and whether the member was
// notified about it.
type UpdateResult struct {
	Detail   *RegistrationDetail
	Notified bool
}

// CancelResult reports what happened during a cancellation.
type CancelResult struct {
	Registration  domain.Registration
	RefundedCents int64
	ManualRefund  bool
	Message       string
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		registrations:  deps.RegistrationRepo,
		signups:        deps.SignupRepo,
		shifts:         deps.ShiftRepo,
		campingOptions: deps.CampingOptionRepo,
		payments:       deps.PaymentRepo,
		audit:          deps.AuditRepo,
		tx:             deps.TxManager,
		refunder:       deps.Refunder,
		dispatcher:     deps.Dispatcher,
		logger:         deps.Logger,
	}
}

// ListRegistrations returns registrations matching the filter.
func (s *AdminService) ListRegistrations(ctx context.Context, filter repository.RegistrationFilter) ([]domain.Registration, error) {
	return s.registrations.ListWithFilter(ctx, filter)
}

// GetRegistration fetches a registration with its associations.
func (s *AdminService) GetRegistration(ctx context.Context, id string) (*RegistrationDetail, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
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

// UpdateRegistration applies an admin edit. Field changes, signup diffs and
// their audit records commit atomically; every audit entry from one call
// shares a transaction id. When Notify is set, the member is told about the
// edit and the result records that.
func (s *AdminService) UpdateRegistration(ctx context.Context, admin *domain.User, id string, input AdminRegistrationUpdate) (*UpdateResult, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return nil, apperrors.NewConflict("cannot edit a cancelled registration", nil)
	}
	if input.Status != nil && *input.Status != reg.Status && !reg.Status.CanTransitionTo(*input.Status) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": reg.Status,
			"to":   *input.Status,
		})
	}

	txID := uuid.NewString()
	err = s.tx.WithinTx(ctx, func(r repository.Repos) error {
		oldValue := map[string]any{
			"status":         reg.Status,
			"arrival_date":   reg.ArrivalDate,
			"departure_date": reg.DepartureDate,
			"notes":          reg.Notes,
		}
		changed := false
		if input.Status != nil && *input.Status != reg.Status {
			reg.Status = *input.Status
			changed = true
		}
		if input.ArrivalDate != nil {
			reg.ArrivalDate = input.ArrivalDate
			changed = true
		}
		if input.DepartureDate != nil {
			reg.DepartureDate = input.DepartureDate
			changed = true
		}
		if input.Notes != nil {
			reg.Notes = *input.Notes
			changed = true
		}
		if changed {
			if err := r.Registrations.Update(ctx, reg); err != nil {
				return err
			}
			entry := &domain.AdminAudit{
				AdminUserID: admin.ID,
				Action:      domain.AuditActionUpdate,
				TargetType:  domain.AuditTargetRegistration,
				TargetID:    reg.ID,
				OldValue:    oldValue,
				NewValue: map[string]any{
					"status":         reg.Status,
					"arrival_date":   reg.ArrivalDate,
					"departure_date": reg.DepartureDate,
					"notes":          reg.Notes,
				},
				Reason:        input.Reason,
				TransactionID: txID,
			}
			if err := r.Audit.Create(ctx, entry); err != nil {
				return err
			}
		}

		if input.ShiftIDs != nil {
			if err := s.applyShiftDiff(ctx, r, admin, reg, *input.ShiftIDs, input.Reason, txID); err != nil {
				return err
			}
		}
		if input.CampingOptionIDs != nil {
			if err := s.applyCampingDiff(ctx, r, admin, reg, *input.CampingOptionIDs, input.Reason, txID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notified := false
	if input.Notify && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:             uuid.NewString(),
			Type:           events.EventRegistrationUpdated,
			RegistrationID: reg.ID,
			Actor:          events.Actor{UserID: admin.ID, Role: admin.Role, IsAdmin: true},
			Timestamp:      time.Now(),
			Payload: events.RegistrationUpdatedPayload{
				UserID: reg.UserID,
				Reason: input.Reason,
			},
		})
		notified = true
	}

	detail, err := s.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Detail: detail, Notified: notified}, nil
}

// CancelRegistration cancels a registration, releases its shift signups and
// optionally refunds its completed payment. A failed refund does not fail the
// cancellation: it is logged, audited and surfaced in the result message.
func (s *AdminService) CancelRegistration(ctx context.Context, admin *domain.User, id, reason string, issueRefund bool) (*CancelResult, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return nil, apperrors.NewConflict("registration already cancelled", nil)
	}

	txID := uuid.NewString()
	oldStatus := reg.Status
	now := time.Now()

	err = s.tx.WithinTx(ctx, func(r repository.Repos) error {
		reg.Status = domain.RegistrationStatusCancelled
		reg.CancelledAt = &now
		if err := r.Registrations.Update(ctx, reg); err != nil {
			return err
		}
		if err := r.Signups.DeleteShiftSignupsByRegistration(ctx, reg.ID); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   admin.ID,
			Action:        domain.AuditActionCancelRegistration,
			TargetType:    domain.AuditTargetRegistration,
			TargetID:      reg.ID,
			OldValue:      map[string]any{"status": oldStatus},
			NewValue:      map[string]any{"status": reg.Status, "cancelled_at": now},
			Reason:        reason,
			TransactionID: txID,
		})
	})
	if err != nil {
		return nil, err
	}

	result := &CancelResult{Registration: *reg, Message: "registration cancelled"}

	if issueRefund {
		s.refundAfterCancel(ctx, admin, reg, reason, txID, result)
	}

	s.publishCancelled(ctx, admin, reg, reason, result)
	return result, nil
}

// ListAudit returns audit trail entries matching the filter.
func (s *AdminService) ListAudit(ctx context.Context, filter repository.AuditFilter) ([]domain.AdminAudit, error) {
	return s.audit.ListWithFilter(ctx, filter)
}

func (s *AdminService) applyShiftDiff(ctx context.Context, r repository.Repos, admin *domain.User, reg *domain.Registration, desired []string, reason, txID string) error {
	current, err := r.Signups.ListShiftSignups(ctx, reg.ID)
	if err != nil {
		return err
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, signup := range current {
		currentSet[signup.ShiftID] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	for _, signup := range current {
		if _, keep := desiredSet[signup.ShiftID]; keep {
			continue
		}
		if err := r.Signups.DeleteShiftSignup(ctx, reg.ID, signup.ShiftID); err != nil {
			return err
		}
		if err := r.Audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   admin.ID,
			Action:        domain.AuditActionDelete,
			TargetType:    domain.AuditTargetShiftSignup,
			TargetID:      signup.ID,
			OldValue:      map[string]any{"shift_id": signup.ShiftID, "registration_id": reg.ID},
			Reason:        reason,
			TransactionID: txID,
		}); err != nil {
			return err
		}
	}

	for _, shiftID := range desired {
		if _, exists := currentSet[shiftID]; exists {
			continue
		}
		if err := checkShiftCapacity(ctx, r.Shifts, shiftID); err != nil {
			return err
		}
		signup := &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: shiftID}
		if err := r.Signups.CreateShiftSignup(ctx, signup); err != nil {
			return err
		}
		if err := r.Audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   admin.ID,
			Action:        domain.AuditActionCreate,
			TargetType:    domain.AuditTargetShiftSignup,
			TargetID:      signup.ID,
			NewValue:      map[string]any{"shift_id": shiftID, "registration_id": reg.ID},
			Reason:        reason,
			TransactionID: txID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *AdminService) applyCampingDiff(ctx context.Context, r repository.Repos, admin *domain.User, reg *domain.Registration, desired []string, reason, txID string) error {
	current, err := r.Signups.ListCampingSignups(ctx, reg.ID)
	if err != nil {
		return err
	}
	currentSet := make(map[string]struct{}, len(current))
	for _, signup := range current {
		currentSet[signup.CampingOptionID] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	for _, signup := range current {
		if _, keep := desiredSet[signup.CampingOptionID]; keep {
			continue
		}
		if err := r.Signups.DeleteCampingSignup(ctx, reg.ID, signup.CampingOptionID); err != nil {
			return err
		}
		if err := r.Audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   admin.ID,
			Action:        domain.AuditActionDelete,
			TargetType:    domain.AuditTargetCampingSignup,
			TargetID:      signup.ID,
			OldValue:      map[string]any{"camping_option_id": signup.CampingOptionID, "registration_id": reg.ID},
			Reason:        reason,
			TransactionID: txID,
		}); err != nil {
			return err
		}
	}

	for _, optionID := range desired {
		if _, exists := currentSet[optionID]; exists {
			continue
		}
		option, err := r.CampingOptions.GetByID(ctx, optionID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("camping option", map[string]any{"camping_option_id": optionID})
			}
			return err
		}
		if option.MaxSignups > 0 {
			count, err := r.CampingOptions.CountSignups(ctx, optionID)
			if err != nil {
				return err
			}
			if count >= option.MaxSignups {
				return apperrors.NewConflict("camping option full", map[string]any{"camping_option_id": optionID})
			}
		}
		signup := &domain.CampingOptionSignup{RegistrationID: reg.ID, CampingOptionID: optionID}
		if err := r.Signups.CreateCampingSignup(ctx, signup); err != nil {
			return err
		}
		if err := r.Audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   admin.ID,
			Action:        domain.AuditActionCreate,
			TargetType:    domain.AuditTargetCampingSignup,
			TargetID:      signup.ID,
			NewValue:      map[string]any{"camping_option_id": optionID, "registration_id": reg.ID},
			Reason:        reason,
			TransactionID: txID,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *AdminService) refundAfterCancel(ctx context.Context, admin *domain.User, reg *domain.Registration, reason, txID string, result *CancelResult) {
	payments, err := s.payments.ListByRegistration(ctx, reg.ID)
	if err != nil {
		s.logger.Error("could not load payments for refund", zap.Error(err), zap.String("registration_id", reg.ID))
		result.ManualRefund = true
		result.Message = "registration cancelled; refund must be handled manually"
		return
	}

	for i := range payments {
		payment := &payments[i]
		if payment.Refundable() == 0 {
			continue
		}
		if payment.Status != domain.PaymentStatusCompleted && payment.Status != domain.PaymentStatusPartiallyRefunded {
			continue
		}
		refunded, err := s.refunder.Refund(ctx, admin.ID, payment.ID, payment.Refundable(), reason)
		if err != nil {
			s.logger.Warn("refund failed during cancellation",
				zap.Error(err),
				zap.String("payment_id", payment.ID),
				zap.String("registration_id", reg.ID))
			result.ManualRefund = true
			result.Message = "registration cancelled; refund failed and must be handled manually"
			if auditErr := s.audit.Create(ctx, &domain.AdminAudit{
				AdminUserID:   admin.ID,
				Action:        domain.AuditActionManualRefundRequired,
				TargetType:    domain.AuditTargetPayment,
				TargetID:      payment.ID,
				OldValue:      map[string]any{"status": payment.Status},
				NewValue:      map[string]any{"refundable_cents": payment.Refundable()},
				Reason:        reason,
				TransactionID: txID,
			}); auditErr != nil {
				s.logger.Error("could not record manual refund audit", zap.Error(auditErr))
			}
			continue
		}
		result.RefundedCents += refunded.RefundedCents
		result.Message = "registration cancelled and payment refunded"
	}
}

func (s *AdminService) publishCancelled(ctx context.Context, admin *domain.User, reg *domain.Registration, reason string, result *CancelResult) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventRegistrationCancelled,
		RegistrationID: reg.ID,
		Actor:          events.Actor{UserID: admin.ID, Role: admin.Role, IsAdmin: true},
		Timestamp:      time.Now(),
		Payload: events.RegistrationCancelledPayload{
			UserID:        reg.UserID,
			Reason:        reason,
			RefundedCents: result.RefundedCents,
			ManualRefund:  result.ManualRefund,
		},
	})
}
