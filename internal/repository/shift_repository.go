package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// ShiftRepository manages shift persistence and occupancy counts.
type ShiftRepository interface {
	Create(ctx context.Context, shift *domain.Shift) error
	Update(ctx context.Context, shift *domain.Shift) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Shift, error)
	ListByJob(ctx context.Context, jobID string) ([]domain.Shift, error)
	List(ctx context.Context) ([]domain.Shift, error)
	CountSignups(ctx context.Context, shiftID string) (int, error)
}

type shiftRepository struct {
	db Querier
}

// NewShiftRepository builds repository.
func NewShiftRepository(db Querier) ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `id, job_id, name, day, start_time, end_time, max_registrations, created_at, updated_at`

func (r *shiftRepository) Create(ctx context.Context, shift *domain.Shift) error {
	const query = `
        INSERT INTO shifts (job_id, name, day, start_time, end_time, max_registrations)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		shift.JobID,
		shift.Name,
		shift.Day,
		shift.StartTime,
		shift.EndTime,
		shift.MaxRegistrations,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
}

func (r *shiftRepository) Update(ctx context.Context, shift *domain.Shift) error {
	const query = `
        UPDATE shifts SET job_id=$1, name=$2, day=$3, start_time=$4, end_time=$5, max_registrations=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		shift.JobID,
		shift.Name,
		shift.Day,
		shift.StartTime,
		shift.EndTime,
		shift.MaxRegistrations,
		shift.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shiftRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM shifts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shiftRepository) GetByID(ctx context.Context, id string) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id=$1`
	var shift domain.Shift
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&shift.ID,
		&shift.JobID,
		&shift.Name,
		&shift.Day,
		&shift.StartTime,
		&shift.EndTime,
		&shift.MaxRegistrations,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepository) ListByJob(ctx context.Context, jobID string) ([]domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE job_id=$1 ORDER BY day, start_time`
	return r.list(ctx, query, jobID)
}

func (r *shiftRepository) List(ctx context.Context) ([]domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts ORDER BY day, start_time`
	return r.list(ctx, query)
}

func (r *shiftRepository) list(ctx context.Context, query string, args ...any) ([]domain.Shift, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Shift
	for rows.Next() {
		var shift domain.Shift
		if err := rows.Scan(
			&shift.ID,
			&shift.JobID,
			&shift.Name,
			&shift.Day,
			&shift.StartTime,
			&shift.EndTime,
			&shift.MaxRegistrations,
			&shift.CreatedAt,
			&shift.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, shift)
	}
	return result, rows.Err()
}

func (r *shiftRepository) CountSignups(ctx context.Context, shiftID string) (int, error) {
	const query = `SELECT COUNT(*) FROM shift_signups WHERE shift_id=$1`
	var count int
	if err := r.db.QueryRow(ctx, query, shiftID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
