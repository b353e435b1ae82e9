package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

// ProfileUpdate carries fields a user may change about themselves.
// Nil means leave untouched.
type ProfileUpdate struct {
	Name             *string
	PlayaName        *string
	Phone            *string
	EmergencyContact *string
}

// AdminUserUpdate carries mutable account fields for the back office.
type AdminUserUpdate struct {
	Role   *domain.UserRole
	Status *domain.UserStatus
	Reason string
}

// UserService covers profile self-service and admin account management.
type UserService struct {
	users repository.UserRepository
	audit repository.AuditRepository
}

func NewUserService(users repository.UserRepository, audit repository.AuditRepository) *UserService {
	return &UserService{users: users, audit: audit}
}

// GetProfile returns the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies self-service changes. Email, role and status are
// never touched here.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if update.PlayaName != nil {
		user.PlayaName = update.PlayaName
	}
	if update.Phone != nil {
		user.Phone = update.Phone
	}
	if update.EmergencyContact != nil {
		user.EmergencyContact = update.EmergencyContact
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns accounts matching the filter, for the back office.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return s.users.ListWithFilter(ctx, filter)
}

// GetUser returns a single account by id, for the back office.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.GetProfile(ctx, id)
}

// AdminUpdateUser changes role or status and records the change. Admins
// cannot change their own role, which keeps at least one admin around.
func (s *UserService) AdminUpdateUser(ctx context.Context, admin *domain.User, userID string, update AdminUserUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldValue := map[string]any{"role": user.Role, "status": user.Status}
	changed := false

	if update.Role != nil && *update.Role != user.Role {
		if user.ID == admin.ID {
			return nil, apperrors.NewConflict("cannot change own role", nil)
		}
		switch *update.Role {
		case domain.RoleParticipant, domain.RoleStaff, domain.RoleAdmin:
		default:
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *update.Role})
		}
		user.Role = *update.Role
		changed = true
	}
	if update.Status != nil && *update.Status != user.Status {
		switch *update.Status {
		case domain.UserStatusActive, domain.UserStatusSuspended:
		default:
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *update.Status})
		}
		if user.ID == admin.ID && *update.Status == domain.UserStatusSuspended {
			return nil, apperrors.NewConflict("cannot suspend own account", nil)
		}
		user.Status = *update.Status
		changed = true
	}
	if !changed {
		return user, nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if s.audit != nil {
		if err := s.audit.Create(ctx, &domain.AdminAudit{
			AdminUserID:   admin.ID,
			Action:        domain.AuditActionUpdate,
			TargetType:    domain.AuditTargetUser,
			TargetID:      user.ID,
			OldValue:      oldValue,
			NewValue:      map[string]any{"role": user.Role, "status": user.Status},
			Reason:        update.Reason,
			TransactionID: uuid.NewString(),
		}); err != nil {
			return nil, err
		}
	}
	return user, nil
}
