package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles every repository bound to one Querier.
type Repos struct {
	Users          UserRepository
	Registrations  RegistrationRepository
	JobCategories  JobCategoryRepository
	Jobs           JobRepository
	Shifts         ShiftRepository
	CampingOptions CampingOptionRepository
	Signups        SignupRepository
	Payments       PaymentRepository
	Notifications  NotificationRepository
	Audit          AuditRepository
	PasswordResets PasswordResetRepository
}

// NewRepos wires all repositories over the given Querier (pool or tx).
func NewRepos(db Querier) Repos {
	return Repos{
		Users:          NewUserRepository(db),
		Registrations:  NewRegistrationRepository(db),
		JobCategories:  NewJobCategoryRepository(db),
		Jobs:           NewJobRepository(db),
		Shifts:         NewShiftRepository(db),
		CampingOptions: NewCampingOptionRepository(db),
		Signups:        NewSignupRepository(db),
		Payments:       NewPaymentRepository(db),
		Notifications:  NewNotificationRepository(db),
		Audit:          NewAuditRepository(db),
		PasswordResets: NewPasswordResetRepository(db),
	}
}

// TxManager runs a function against transaction-bound repositories,
// committing when it returns nil and rolling back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager builds a pgx-backed TxManager.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) WithinTx(ctx context.Context, fn func(Repos) error) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}
