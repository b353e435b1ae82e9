package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// RegistrationFilter captures admin search parameters.
type RegistrationFilter struct {
	UserID      *string
	Year        *int
	Statuses    []domain.RegistrationStatus
	EmailSearch *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// RegistrationRepository encapsulates registration persistence.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	Update(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	GetByUserAndYear(ctx context.Context, userID string, year int) (*domain.Registration, error)
	ListWithFilter(ctx context.Context, filter RegistrationFilter) ([]domain.Registration, error)
}

type registrationRepository struct {
	db Querier
}

// NewRegistrationRepository instantiates repository.
func NewRegistrationRepository(db Querier) RegistrationRepository {
	return &registrationRepository{db: db}
}

const registrationColumns = `id, user_id, year, status, arrival_date, departure_date, notes, created_at, updated_at, cancelled_at`

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (user_id, year, status, arrival_date, departure_date, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		reg.UserID,
		reg.Year,
		reg.Status,
		reg.ArrivalDate,
		reg.DepartureDate,
		reg.Notes,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
}

func (r *registrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	const query = `
        UPDATE registrations SET status=$1, arrival_date=$2, departure_date=$3, notes=$4,
            cancelled_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		reg.Status,
		reg.ArrivalDate,
		reg.DepartureDate,
		reg.Notes,
		reg.CancelledAt,
		reg.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *registrationRepository) GetByUserAndYear(ctx context.Context, userID string, year int) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id=$1 AND year=$2`
	var reg domain.Registration
	if err := r.db.QueryRow(ctx, query, userID, year).Scan(scanTargets(&reg)...); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Registration, error) {
	var reg domain.Registration
	if err := r.db.QueryRow(ctx, query, arg).Scan(scanTargets(&reg)...); err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanTargets(reg *domain.Registration) []any {
	return []any{
		&reg.ID,
		&reg.UserID,
		&reg.Year,
		&reg.Status,
		&reg.ArrivalDate,
		&reg.DepartureDate,
		&reg.Notes,
		&reg.CreatedAt,
		&reg.UpdatedAt,
		&reg.CancelledAt,
	}
}

func (r *registrationRepository) ListWithFilter(ctx context.Context, filter RegistrationFilter) ([]domain.Registration, error) {
	base := `SELECT r.id, r.user_id, r.year, r.status, r.arrival_date, r.departure_date, r.notes,
                    r.created_at, r.updated_at, r.cancelled_at
             FROM registrations r`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.EmailSearch != nil && strings.TrimSpace(*filter.EmailSearch) != "" {
		base += ` JOIN users u ON u.id = r.user_id`
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.EmailSearch)) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("LOWER(u.email) LIKE $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("r.user_id=$%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		clauses = append(clauses, fmt.Sprintf("r.year=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("r.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("r.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("r.created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY r.created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Registration
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(scanTargets(&reg)...); err != nil {
			return nil, err
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}
