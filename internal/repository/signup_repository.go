package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// SignupRepository manages the join rows between registrations and the
// shifts / camping options they selected.
type SignupRepository interface {
	CreateShiftSignup(ctx context.Context, signup *domain.ShiftSignup) error
	DeleteShiftSignup(ctx context.Context, registrationID, shiftID string) error
	DeleteShiftSignupsByRegistration(ctx context.Context, registrationID string) error
	ListShiftSignups(ctx context.Context, registrationID string) ([]domain.ShiftSignup, error)

	CreateCampingSignup(ctx context.Context, signup *domain.CampingOptionSignup) error
	DeleteCampingSignup(ctx context.Context, registrationID, optionID string) error
	ListCampingSignups(ctx context.Context, registrationID string) ([]domain.CampingOptionSignup, error)
}

type signupRepository struct {
	db Querier
}

// NewSignupRepository builds repository.
func NewSignupRepository(db Querier) SignupRepository {
	return &signupRepository{db: db}
}

func (r *signupRepository) CreateShiftSignup(ctx context.Context, signup *domain.ShiftSignup) error {
	const query = `
        INSERT INTO shift_signups (registration_id, shift_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, signup.RegistrationID, signup.ShiftID).
		Scan(&signup.ID, &signup.CreatedAt)
}

func (r *signupRepository) DeleteShiftSignup(ctx context.Context, registrationID, shiftID string) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM shift_signups WHERE registration_id=$1 AND shift_id=$2`,
		registrationID, shiftID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *signupRepository) DeleteShiftSignupsByRegistration(ctx context.Context, registrationID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM shift_signups WHERE registration_id=$1`, registrationID)
	return err
}

func (r *signupRepository) ListShiftSignups(ctx context.Context, registrationID string) ([]domain.ShiftSignup, error) {
	const query = `
        SELECT id, registration_id, shift_id, created_at
        FROM shift_signups WHERE registration_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ShiftSignup
	for rows.Next() {
		var signup domain.ShiftSignup
		if err := rows.Scan(&signup.ID, &signup.RegistrationID, &signup.ShiftID, &signup.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, signup)
	}
	return result, rows.Err()
}

func (r *signupRepository) CreateCampingSignup(ctx context.Context, signup *domain.CampingOptionSignup) error {
	const query = `
        INSERT INTO camping_option_signups (registration_id, camping_option_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, signup.RegistrationID, signup.CampingOptionID).
		Scan(&signup.ID, &signup.CreatedAt)
}

func (r *signupRepository) DeleteCampingSignup(ctx context.Context, registrationID, optionID string) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM camping_option_signups WHERE registration_id=$1 AND camping_option_id=$2`,
		registrationID, optionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *signupRepository) ListCampingSignups(ctx context.Context, registrationID string) ([]domain.CampingOptionSignup, error) {
	const query = `
        SELECT id, registration_id, camping_option_id, created_at
        FROM camping_option_signups WHERE registration_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CampingOptionSignup
	for rows.Next() {
		var signup domain.CampingOptionSignup
		if err := rows.Scan(&signup.ID, &signup.RegistrationID, &signup.CampingOptionID, &signup.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, signup)
	}
	return result, rows.Err()
}
