package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

type fakeRefunder struct {
	err   error
	calls []refundCall
}

func (r *fakeRefunder) Refund(_ context.Context, _ string, paymentID string, amountCents int64, _ string) (*domain.Payment, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.calls = append(r.calls, refundCall{providerRef: paymentID, amountCents: amountCents})
	return &domain.Payment{ID: paymentID, RefundedCents: amountCents, Status: domain.PaymentStatusRefunded}, nil
}

type adminFixture struct {
	store     *memStore
	repos     repository.Repos
	refunder  *fakeRefunder
	service   *AdminService
	published *[]events.Event
}

func newAdminFixture() *adminFixture {
	store := newMemStore()
	repos := newMemRepos(store)
	refunder := &fakeRefunder{}
	dispatcher := events.NewInMemoryDispatcher(nil)

	var published []events.Event
	for _, eventType := range []events.EventType{events.EventRegistrationCancelled, events.EventRegistrationUpdated} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			published = append(published, event)
			return nil
		})
	}

	service := NewAdminService(AdminDependencies{
		RegistrationRepo:  repos.Registrations,
		SignupRepo:        repos.Signups,
		ShiftRepo:         repos.Shifts,
		CampingOptionRepo: repos.CampingOptions,
		PaymentRepo:       repos.Payments,
		AuditRepo:         repos.Audit,
		TxManager:         &memTxManager{repos: repos},
		Refunder:          refunder,
		Dispatcher:        dispatcher,
		Logger:            zap.NewNop(),
	})
	return &adminFixture{store: store, repos: repos, refunder: refunder, service: service, published: &published}
}

func (f *adminFixture) seedAdmin() *domain.User {
	admin := &domain.User{Name: "Admin", Email: "admin@example.camp", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	_ = f.repos.Users.Create(context.Background(), admin)
	return admin
}

func (f *adminFixture) seedRegistration(status domain.RegistrationStatus) *domain.Registration {
	ctx := context.Background()
	user := &domain.User{Name: "Member", Email: "member@example.camp", Role: domain.RoleParticipant, Status: domain.UserStatusActive}
	_ = f.repos.Users.Create(ctx, user)
	reg := &domain.Registration{UserID: user.ID, Year: 2026, Status: status}
	_ = f.repos.Registrations.Create(ctx, reg)
	return reg
}

func (f *adminFixture) seedShift(maxRegistrations int) *domain.Shift {
	ctx := context.Background()
	category := &domain.JobCategory{Name: "Kitchen"}
	_ = f.repos.JobCategories.Create(ctx, category)
	job := &domain.Job{CategoryID: category.ID, Name: "Dishes"}
	_ = f.repos.Jobs.Create(ctx, job)
	shift := &domain.Shift{JobID: job.ID, Name: "Morning", Day: domain.DayMonday, StartTime: "08:00", EndTime: "12:00", MaxRegistrations: maxRegistrations}
	_ = f.repos.Shifts.Create(ctx, shift)
	return shift
}

func TestUpdateRegistrationAuditsFieldChanges(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusPending)

	notes := "arriving late"
	arrival := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	result, err := f.service.UpdateRegistration(context.Background(), admin, reg.ID, AdminRegistrationUpdate{
		Notes:       &notes,
		ArrivalDate: &arrival,
		Reason:      "phone call with participant",
	})
	require.NoError(t, err)
	assert.Equal(t, "arriving late", result.Detail.Registration.Notes)
	require.NotNil(t, result.Detail.Registration.ArrivalDate)
	assert.False(t, result.Notified)

	entries, err := f.repos.Audit.ListByTarget(context.Background(), domain.AuditTargetRegistration, reg.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionUpdate, entries[0].Action)
	assert.Equal(t, "phone call with participant", entries[0].Reason)
}

func TestUpdateRegistrationNotifiesMember(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusPending)

	notes := "tent moved to quiet field"
	result, err := f.service.UpdateRegistration(context.Background(), admin, reg.ID, AdminRegistrationUpdate{
		Notes:  &notes,
		Reason: "noise complaint",
		Notify: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Notified)

	require.Len(t, *f.published, 1)
	event := (*f.published)[0]
	assert.Equal(t, events.EventRegistrationUpdated, event.Type)
	payload, ok := event.Payload.(events.RegistrationUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, reg.UserID, payload.UserID)
	assert.Equal(t, "noise complaint", payload.Reason)
}

func TestUpdateRegistrationShiftDiffSharesTransaction(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusConfirmed)
	kept := f.seedShift(5)
	added := f.seedShift(5)
	removed := f.seedShift(5)
	ctx := context.Background()
	_ = f.repos.Signups.CreateShiftSignup(ctx, &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: kept.ID})
	_ = f.repos.Signups.CreateShiftSignup(ctx, &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: removed.ID})

	notes := "reshuffled shifts"
	desired := []string{kept.ID, added.ID}
	result, err := f.service.UpdateRegistration(ctx, admin, reg.ID, AdminRegistrationUpdate{
		Notes:    &notes,
		ShiftIDs: &desired,
		Reason:   "schedule change",
	})
	require.NoError(t, err)
	require.Len(t, result.Detail.ShiftSignups, 2)

	got := map[string]bool{}
	for _, signup := range result.Detail.ShiftSignups {
		got[signup.ShiftID] = true
	}
	assert.True(t, got[kept.ID])
	assert.True(t, got[added.ID])
	assert.False(t, got[removed.ID])

	entries, err := f.repos.Audit.ListWithFilter(ctx, repository.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	txID := entries[0].TransactionID
	for _, entry := range entries {
		assert.Equal(t, txID, entry.TransactionID)
	}
}

func TestUpdateRegistrationShiftFull(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusConfirmed)
	other := f.seedRegistration(domain.RegistrationStatusConfirmed)
	shift := f.seedShift(1)
	_ = f.repos.Signups.CreateShiftSignup(context.Background(), &domain.ShiftSignup{RegistrationID: other.ID, ShiftID: shift.ID})

	desired := []string{shift.ID}
	_, err := f.service.UpdateRegistration(context.Background(), admin, reg.ID, AdminRegistrationUpdate{ShiftIDs: &desired})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateRegistrationCancelledRejected(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusCancelled)

	notes := "nope"
	_, err := f.service.UpdateRegistration(context.Background(), admin, reg.ID, AdminRegistrationUpdate{Notes: &notes})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateRegistrationInvalidTransition(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusConfirmed)

	target := domain.RegistrationStatusWaitlisted
	_, err := f.service.UpdateRegistration(context.Background(), admin, reg.ID, AdminRegistrationUpdate{Status: &target})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCancelRegistrationReleasesShifts(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusConfirmed)
	shift := f.seedShift(5)
	ctx := context.Background()
	_ = f.repos.Signups.CreateShiftSignup(ctx, &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: shift.ID})

	result, err := f.service.CancelRegistration(ctx, admin, reg.ID, "no-show", false)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusCancelled, result.Registration.Status)
	require.NotNil(t, result.Registration.CancelledAt)
	assert.False(t, result.ManualRefund)

	signups, err := f.repos.Signups.ListShiftSignups(ctx, reg.ID)
	require.NoError(t, err)
	assert.Empty(t, signups)

	entries, err := f.repos.Audit.ListByTarget(ctx, domain.AuditTargetRegistration, reg.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCancelRegistration, entries[0].Action)

	require.Len(t, *f.published, 1)
	payload, ok := (*f.published)[0].Payload.(events.RegistrationCancelledPayload)
	require.True(t, ok)
	assert.Equal(t, "no-show", payload.Reason)
}

func TestCancelRegistrationAlreadyCancelled(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusCancelled)

	_, err := f.service.CancelRegistration(context.Background(), admin, reg.ID, "again", false)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCancelRegistrationWithRefund(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusConfirmed)
	ctx := context.Background()
	ref := "pi_done"
	payment := &domain.Payment{
		UserID:         reg.UserID,
		RegistrationID: reg.ID,
		AmountCents:    15000,
		Currency:       "usd",
		Provider:       domain.ProviderStripe,
		ProviderRef:    &ref,
		Status:         domain.PaymentStatusCompleted,
	}
	_ = f.repos.Payments.Create(ctx, payment)

	result, err := f.service.CancelRegistration(ctx, admin, reg.ID, "medical", true)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), result.RefundedCents)
	assert.False(t, result.ManualRefund)
	assert.Equal(t, "registration cancelled and payment refunded", result.Message)
	require.Len(t, f.refunder.calls, 1)
	assert.Equal(t, int64(15000), f.refunder.calls[0].amountCents)
}

func TestCancelRegistrationRefundFailureIsNonFatal(t *testing.T) {
	f := newAdminFixture()
	admin := f.seedAdmin()
	reg := f.seedRegistration(domain.RegistrationStatusConfirmed)
	f.refunder.err = errors.New("provider down")
	ctx := context.Background()
	ref := "pi_done"
	payment := &domain.Payment{
		UserID:         reg.UserID,
		RegistrationID: reg.ID,
		AmountCents:    15000,
		Currency:       "usd",
		Provider:       domain.ProviderStripe,
		ProviderRef:    &ref,
		Status:         domain.PaymentStatusCompleted,
	}
	_ = f.repos.Payments.Create(ctx, payment)

	result, err := f.service.CancelRegistration(ctx, admin, reg.ID, "medical", true)
	require.NoError(t, err)
	assert.True(t, result.ManualRefund)
	assert.Zero(t, result.RefundedCents)
	assert.Equal(t, "registration cancelled; refund failed and must be handled manually", result.Message)

	stored, err := f.repos.Registrations.GetByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusCancelled, stored.Status)

	entries, err := f.repos.Audit.ListByTarget(ctx, domain.AuditTargetPayment, payment.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionManualRefundRequired, entries[0].Action)
}
