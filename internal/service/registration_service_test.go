package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/camp-registration/internal/config"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/events"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

func testCamp() config.CampConfig {
	return config.CampConfig{Year: 2026, RegistrationOpen: true, Currency: "usd"}
}

type registrationFixture struct {
	store      *memStore
	repos      repository.Repos
	dispatcher events.Dispatcher
	service    *RegistrationService
	published  *[]events.Event
}

func newRegistrationFixture(camp config.CampConfig) *registrationFixture {
	store := newMemStore()
	repos := newMemRepos(store)
	dispatcher := events.NewInMemoryDispatcher(nil)

	var published []events.Event
	capture := func(_ context.Context, event events.Event) error {
		published = append(published, event)
		return nil
	}
	dispatcher.Subscribe(events.EventRegistrationCreated, capture)
	dispatcher.Subscribe(events.EventRegistrationConfirmed, capture)
	dispatcher.Subscribe(events.EventRegistrationCancelled, capture)

	service := NewRegistrationService(camp, RegistrationDependencies{
		RegistrationRepo:  repos.Registrations,
		SignupRepo:        repos.Signups,
		ShiftRepo:         repos.Shifts,
		JobRepo:           repos.Jobs,
		CampingOptionRepo: repos.CampingOptions,
		PaymentRepo:       repos.Payments,
		TxManager:         &memTxManager{repos: repos},
		Dispatcher:        dispatcher,
	})
	return &registrationFixture{
		store:      store,
		repos:      repos,
		dispatcher: dispatcher,
		service:    service,
		published:  &published,
	}
}

func seedUser(f *registrationFixture, role domain.UserRole) *domain.User {
	user := &domain.User{
		Name:   "Dusty Tester",
		Email:  string(role) + "@example.camp",
		Role:   role,
		Status: domain.UserStatusActive,
	}
	_ = f.repos.Users.Create(context.Background(), user)
	return user
}

func seedOption(f *registrationFixture, option domain.CampingOption) string {
	_ = f.repos.CampingOptions.Create(context.Background(), &option)
	return option.ID
}

func seedJobShift(f *registrationFixture, staffOnly bool, maxRegistrations int) string {
	category := domain.JobCategory{Name: "Kitchen"}
	_ = f.repos.JobCategories.Create(context.Background(), &category)
	job := domain.Job{CategoryID: category.ID, Name: "Dishes", StaffOnly: staffOnly}
	_ = f.repos.Jobs.Create(context.Background(), &job)
	shift := domain.Shift{JobID: job.ID, Day: domain.DayMonday, StartTime: "09:00", EndTime: "12:00", MaxRegistrations: maxRegistrations}
	_ = f.repos.Shifts.Create(context.Background(), &shift)
	return shift.ID
}

func TestCreateRegistrationComputesDues(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	optionA := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, ParticipantDuesCents: 10000, StaffDuesCents: 5000})
	optionB := seedOption(f, domain.CampingOption{Name: "RV", Enabled: true, ParticipantDuesCents: 5000, StaffDuesCents: 2500})

	detail, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{optionA, optionB},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RegistrationStatusPending, detail.Registration.Status)
	assert.Equal(t, 2026, detail.Registration.Year)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, int64(15000), detail.Payments[0].AmountCents)
	assert.Equal(t, domain.PaymentStatusPending, detail.Payments[0].Status)
	assert.Len(t, detail.CampingSignups, 2)

	require.Len(t, *f.published, 1)
	payload, ok := (*f.published)[0].Payload.(events.RegistrationCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(15000), payload.DuesCents)
}

func TestCreateRegistrationStaffDues(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleStaff)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, ParticipantDuesCents: 10000, StaffDuesCents: 4000})

	detail, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
	})
	require.NoError(t, err)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, int64(4000), detail.Payments[0].AmountCents)
}

func TestCreateRegistrationZeroDuesSkipsPayment(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Free", Enabled: true})

	detail, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
	})
	require.NoError(t, err)
	assert.Empty(t, detail.Payments)
}

func TestCreateRegistrationClosed(t *testing.T) {
	camp := testCamp()
	camp.RegistrationOpen = false
	f := newRegistrationFixture(camp)
	user := seedUser(f, domain.RoleParticipant)

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{"any"},
	})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateRegistrationDuplicateYear(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, ParticipantDuesCents: 100})

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{CampingOptionIDs: []string{option}})
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), user, RegistrationCreateInput{CampingOptionIDs: []string{option}})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateRegistrationDisabledOption(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Closed", Enabled: false})

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{CampingOptionIDs: []string{option}})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateRegistrationOptionFull(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	first := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tiny", Enabled: true, MaxSignups: 1})

	_, err := f.service.Create(context.Background(), first, RegistrationCreateInput{CampingOptionIDs: []string{option}})
	require.NoError(t, err)

	second := seedUser(f, domain.RoleAdmin)
	_, err = f.service.Create(context.Background(), second, RegistrationCreateInput{CampingOptionIDs: []string{option}})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateRegistrationRequiresWorkShifts(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, WorkShiftsRequired: 2})
	shift := seedJobShift(f, false, 0)

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, 2, domainErr.Details["required"])
}

func seedRequiredJobShift(f *registrationFixture, staffOnly bool) (string, string) {
	category := domain.JobCategory{Name: "Safety"}
	_ = f.repos.JobCategories.Create(context.Background(), &category)
	job := domain.Job{CategoryID: category.ID, Name: "Gate Watch", StaffOnly: staffOnly, AlwaysRequired: true}
	_ = f.repos.Jobs.Create(context.Background(), &job)
	shift := domain.Shift{JobID: job.ID, Day: domain.DayTuesday, StartTime: "18:00", EndTime: "22:00"}
	_ = f.repos.Shifts.Create(context.Background(), &shift)
	return job.ID, shift.ID
}

func TestCreateRegistrationRequiredJobNotCovered(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, WorkShiftsRequired: 1})
	jobID, _ := seedRequiredJobShift(f, false)
	other := seedJobShift(f, false, 0)

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{other},
	})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, jobID, domainErr.Details["job_id"])
}

func TestCreateRegistrationRequiredJobCovered(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, WorkShiftsRequired: 1})
	_, shift := seedRequiredJobShift(f, false)

	detail, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.NoError(t, err)
	require.Len(t, detail.ShiftSignups, 1)
}

func TestCreateRegistrationRequiredStaffJobSkippedForParticipants(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, WorkShiftsRequired: 1})
	seedRequiredJobShift(f, true)
	shift := seedJobShift(f, false, 0)

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.NoError(t, err)
}

func TestCreateRegistrationStaffOnlyShift(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true})
	shift := seedJobShift(f, true, 0)

	_, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateRegistrationShiftFull(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true})
	shift := seedJobShift(f, false, 1)

	first := seedUser(f, domain.RoleParticipant)
	_, err := f.service.Create(context.Background(), first, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.NoError(t, err)

	second := seedUser(f, domain.RoleStaff)
	_, err = f.service.Create(context.Background(), second, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGetForUserNotFound(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	_, err := f.service.GetForUser(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestGetForUserReturnsAssociations(t *testing.T) {
	f := newRegistrationFixture(testCamp())
	user := seedUser(f, domain.RoleParticipant)
	option := seedOption(f, domain.CampingOption{Name: "Tent", Enabled: true, ParticipantDuesCents: 2500})
	shift := seedJobShift(f, false, 0)

	created, err := f.service.Create(context.Background(), user, RegistrationCreateInput{
		CampingOptionIDs: []string{option},
		ShiftIDs:         []string{shift},
	})
	require.NoError(t, err)

	detail, err := f.service.GetForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Registration.ID, detail.Registration.ID)
	assert.Len(t, detail.ShiftSignups, 1)
	assert.Len(t, detail.CampingSignups, 1)
	assert.Len(t, detail.Payments, 1)
}
