package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// AuditFilter captures audit trail search parameters.
type AuditFilter struct {
	AdminUserID *string
	Action      *domain.AuditAction
	TargetType  *domain.AuditTargetType
	TargetID    *string
	Limit       int
	Offset      int
}

// AuditRepository stores admin audit entries. Entries are append-only.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AdminAudit) error
	ListWithFilter(ctx context.Context, filter AuditFilter) ([]domain.AdminAudit, error)
	ListByTarget(ctx context.Context, targetType domain.AuditTargetType, targetID string) ([]domain.AdminAudit, error)
}

type auditRepository struct {
	db Querier
}

// NewAuditRepository builds repository.
func NewAuditRepository(db Querier) AuditRepository {
	return &auditRepository{db: db}
}

const auditColumns = `id, admin_user_id, action, target_type, target_id, old_value, new_value, reason, transaction_id, created_at`

func (r *auditRepository) Create(ctx context.Context, entry *domain.AdminAudit) error {
	const query = `
        INSERT INTO admin_audit (admin_user_id, action, target_type, target_id, old_value, new_value, reason, transaction_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.AdminUserID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.OldValue,
		entry.NewValue,
		entry.Reason,
		entry.TransactionID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListWithFilter(ctx context.Context, filter AuditFilter) ([]domain.AdminAudit, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AdminUserID != nil {
		args = append(args, *filter.AdminUserID)
		clauses = append(clauses, fmt.Sprintf("admin_user_id=$%d", len(args)))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		clauses = append(clauses, fmt.Sprintf("action=$%d", len(args)))
	}
	if filter.TargetType != nil {
		args = append(args, *filter.TargetType)
		clauses = append(clauses, fmt.Sprintf("target_type=$%d", len(args)))
	}
	if filter.TargetID != nil {
		args = append(args, *filter.TargetID)
		clauses = append(clauses, fmt.Sprintf("target_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM admin_audit WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		auditColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *auditRepository) ListByTarget(ctx context.Context, targetType domain.AuditTargetType, targetID string) ([]domain.AdminAudit, error) {
	query := `SELECT ` + auditColumns + ` FROM admin_audit WHERE target_type=$1 AND target_id=$2 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func scanAuditRows(rows pgx.Rows) ([]domain.AdminAudit, error) {
	var result []domain.AdminAudit
	for rows.Next() {
		var entry domain.AdminAudit
		if err := rows.Scan(
			&entry.ID,
			&entry.AdminUserID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.OldValue,
			&entry.NewValue,
			&entry.Reason,
			&entry.TransactionID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
