package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// CampingOptionRepository manages camping option persistence.
type CampingOptionRepository interface {
	Create(ctx context.Context, option *domain.CampingOption) error
	Update(ctx context.Context, option *domain.CampingOption) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.CampingOption, error)
	List(ctx context.Context, enabledOnly bool) ([]domain.CampingOption, error)
	CountSignups(ctx context.Context, optionID string) (int, error)
}

type campingOptionRepository struct {
	db Querier
}

// NewCampingOptionRepository builds repository.
func NewCampingOptionRepository(db Querier) CampingOptionRepository {
	return &campingOptionRepository{db: db}
}

const campingOptionColumns = `id, name, description, enabled, work_shifts_required, participant_dues_cents, staff_dues_cents, max_signups, created_at, updated_at`

func (r *campingOptionRepository) Create(ctx context.Context, option *domain.CampingOption) error {
	const query = `
        INSERT INTO camping_options (name, description, enabled, work_shifts_required, participant_dues_cents, staff_dues_cents, max_signups)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		option.Name,
		option.Description,
		option.Enabled,
		option.WorkShiftsRequired,
		option.ParticipantDuesCents,
		option.StaffDuesCents,
		option.MaxSignups,
	).Scan(&option.ID, &option.CreatedAt, &option.UpdatedAt)
}

func (r *campingOptionRepository) Update(ctx context.Context, option *domain.CampingOption) error {
	const query = `
        UPDATE camping_options SET name=$1, description=$2, enabled=$3, work_shifts_required=$4,
            participant_dues_cents=$5, staff_dues_cents=$6, max_signups=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		option.Name,
		option.Description,
		option.Enabled,
		option.WorkShiftsRequired,
		option.ParticipantDuesCents,
		option.StaffDuesCents,
		option.MaxSignups,
		option.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *campingOptionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM camping_options WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *campingOptionRepository) GetByID(ctx context.Context, id string) (*domain.CampingOption, error) {
	query := `SELECT ` + campingOptionColumns + ` FROM camping_options WHERE id=$1`
	var option domain.CampingOption
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&option.ID,
		&option.Name,
		&option.Description,
		&option.Enabled,
		&option.WorkShiftsRequired,
		&option.ParticipantDuesCents,
		&option.StaffDuesCents,
		&option.MaxSignups,
		&option.CreatedAt,
		&option.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *campingOptionRepository) List(ctx context.Context, enabledOnly bool) ([]domain.CampingOption, error) {
	query := `SELECT ` + campingOptionColumns + ` FROM camping_options`
	if enabledOnly {
		query += ` WHERE enabled=TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CampingOption
	for rows.Next() {
		var option domain.CampingOption
		if err := rows.Scan(
			&option.ID,
			&option.Name,
			&option.Description,
			&option.Enabled,
			&option.WorkShiftsRequired,
			&option.ParticipantDuesCents,
			&option.StaffDuesCents,
			&option.MaxSignups,
			&option.CreatedAt,
			&option.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, option)
	}
	return result, rows.Err()
}

func (r *campingOptionRepository) CountSignups(ctx context.Context, optionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM camping_option_signups WHERE camping_option_id=$1`
	var count int
	if err := r.db.QueryRow(ctx, query, optionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
