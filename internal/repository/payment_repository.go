package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// PaymentRepository encapsulates payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*domain.Payment, error)
	ListByRegistration(ctx context.Context, registrationID string) ([]domain.Payment, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, error)
}

type paymentRepository struct {
	db Querier
}

// NewPaymentRepository instantiates repository.
func NewPaymentRepository(db Querier) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, user_id, registration_id, amount_cents, refunded_cents, currency, provider, provider_ref, status, created_at, updated_at`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (user_id, registration_id, amount_cents, refunded_cents, currency, provider, provider_ref, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		payment.UserID,
		payment.RegistrationID,
		payment.AmountCents,
		payment.RefundedCents,
		payment.Currency,
		payment.Provider,
		payment.ProviderRef,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	const query = `
        UPDATE payments SET amount_cents=$1, refunded_cents=$2, provider_ref=$3, status=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		payment.AmountCents,
		payment.RefundedCents,
		payment.ProviderRef,
		payment.Status,
		payment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *paymentRepository) GetByProviderRef(ctx context.Context, providerRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_ref=$1`
	return r.fetchSingle(ctx, query, providerRef)
}

func (r *paymentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	var payment domain.Payment
	if err := r.db.QueryRow(ctx, query, arg).Scan(paymentScanTargets(&payment)...); err != nil {
		return nil, err
	}
	return &payment, nil
}

func paymentScanTargets(payment *domain.Payment) []any {
	return []any{
		&payment.ID,
		&payment.UserID,
		&payment.RegistrationID,
		&payment.AmountCents,
		&payment.RefundedCents,
		&payment.Currency,
		&payment.Provider,
		&payment.ProviderRef,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	}
}

func (r *paymentRepository) ListByRegistration(ctx context.Context, registrationID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE registration_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, registrationID)
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Payment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(paymentScanTargets(&payment)...); err != nil {
			return nil, err
		}
		result = append(result, payment)
	}
	return result, rows.Err()
}
