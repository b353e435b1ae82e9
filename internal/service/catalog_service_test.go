package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/repository"
	apperrors "github.com/spec-kit/camp-registration/pkg/util/errorutil"
)

type catalogFixture struct {
	store   *memStore
	repos   repository.Repos
	service *CatalogService
	admin   *domain.User
}

func newCatalogFixture() *catalogFixture {
	store := newMemStore()
	repos := newMemRepos(store)
	service := NewCatalogService(testCamp(), CatalogDependencies{
		JobCategoryRepo:   repos.JobCategories,
		JobRepo:           repos.Jobs,
		ShiftRepo:         repos.Shifts,
		CampingOptionRepo: repos.CampingOptions,
		AuditRepo:         repos.Audit,
	})
	admin := &domain.User{Name: "Admin", Email: "admin@example.camp", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	_ = repos.Users.Create(context.Background(), admin)
	return &catalogFixture{store: store, repos: repos, service: service, admin: admin}
}

func TestGetCatalogIncludesOccupancy(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	option := &domain.CampingOption{Name: "Tent", Enabled: true, ParticipantDuesCents: 10000}
	require.NoError(t, f.service.CreateCampingOption(ctx, f.admin, option))

	category := &domain.JobCategory{Name: "Kitchen"}
	require.NoError(t, f.service.CreateJobCategory(ctx, f.admin, category))
	job := &domain.Job{CategoryID: category.ID, Name: "Dishes"}
	require.NoError(t, f.service.CreateJob(ctx, f.admin, job))
	shift := &domain.Shift{JobID: job.ID, Name: "Morning", Day: domain.DayTuesday, StartTime: "08:00", EndTime: "12:00", MaxRegistrations: 4}
	require.NoError(t, f.service.CreateShift(ctx, f.admin, shift))

	reg := &domain.Registration{UserID: f.admin.ID, Year: 2026, Status: domain.RegistrationStatusConfirmed}
	_ = f.repos.Registrations.Create(ctx, reg)
	_ = f.repos.Signups.CreateShiftSignup(ctx, &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: shift.ID})

	catalog, err := f.service.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2026, catalog.Year)
	assert.True(t, catalog.RegistrationOpen)
	require.Len(t, catalog.CampingOptions, 1)
	require.Len(t, catalog.Shifts, 1)
	assert.Equal(t, 1, catalog.Shifts[0].SignupCount)
}

func TestCreateJobUnknownCategory(t *testing.T) {
	f := newCatalogFixture()
	job := &domain.Job{CategoryID: "missing", Name: "Dishes"}
	err := f.service.CreateJob(context.Background(), f.admin, job)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestDeleteJobCategoryWithJobs(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	category := &domain.JobCategory{Name: "Kitchen"}
	require.NoError(t, f.service.CreateJobCategory(ctx, f.admin, category))
	require.NoError(t, f.service.CreateJob(ctx, f.admin, &domain.Job{CategoryID: category.ID, Name: "Dishes"}))

	err := f.service.DeleteJobCategory(ctx, f.admin, category.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestDeleteShiftWithSignups(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	category := &domain.JobCategory{Name: "Kitchen"}
	require.NoError(t, f.service.CreateJobCategory(ctx, f.admin, category))
	job := &domain.Job{CategoryID: category.ID, Name: "Dishes"}
	require.NoError(t, f.service.CreateJob(ctx, f.admin, job))
	shift := &domain.Shift{JobID: job.ID, Name: "Morning", Day: domain.DayWednesday, StartTime: "08:00", EndTime: "12:00"}
	require.NoError(t, f.service.CreateShift(ctx, f.admin, shift))

	reg := &domain.Registration{UserID: f.admin.ID, Year: 2026, Status: domain.RegistrationStatusConfirmed}
	_ = f.repos.Registrations.Create(ctx, reg)
	_ = f.repos.Signups.CreateShiftSignup(ctx, &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: shift.ID})

	err := f.service.DeleteShift(ctx, f.admin, shift.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestUpdateShiftCapacityBelowSignups(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	category := &domain.JobCategory{Name: "Kitchen"}
	require.NoError(t, f.service.CreateJobCategory(ctx, f.admin, category))
	job := &domain.Job{CategoryID: category.ID, Name: "Dishes"}
	require.NoError(t, f.service.CreateJob(ctx, f.admin, job))
	shift := &domain.Shift{JobID: job.ID, Name: "Morning", Day: domain.DayThursday, StartTime: "08:00", EndTime: "12:00", MaxRegistrations: 4}
	require.NoError(t, f.service.CreateShift(ctx, f.admin, shift))

	for i := 0; i < 2; i++ {
		reg := &domain.Registration{UserID: f.admin.ID, Year: 2026, Status: domain.RegistrationStatusConfirmed}
		_ = f.repos.Registrations.Create(ctx, reg)
		_ = f.repos.Signups.CreateShiftSignup(ctx, &domain.ShiftSignup{RegistrationID: reg.ID, ShiftID: shift.ID})
	}

	updated := *shift
	updated.MaxRegistrations = 1
	err := f.service.UpdateShift(ctx, f.admin, &updated)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)

	updated.MaxRegistrations = 2
	require.NoError(t, f.service.UpdateShift(ctx, f.admin, &updated))
}

func TestDeleteCampingOptionWithSignups(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	option := &domain.CampingOption{Name: "Tent", Enabled: true}
	require.NoError(t, f.service.CreateCampingOption(ctx, f.admin, option))

	reg := &domain.Registration{UserID: f.admin.ID, Year: 2026, Status: domain.RegistrationStatusConfirmed}
	_ = f.repos.Registrations.Create(ctx, reg)
	_ = f.repos.Signups.CreateCampingSignup(ctx, &domain.CampingOptionSignup{RegistrationID: reg.ID, CampingOptionID: option.ID})

	err := f.service.DeleteCampingOption(ctx, f.admin, option.ID)
	require.Error(t, err)
	assert.Equal(t, 409, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSetCampingOptionEnabled(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	option := &domain.CampingOption{Name: "Tent", Enabled: true}
	require.NoError(t, f.service.CreateCampingOption(ctx, f.admin, option))

	updated, err := f.service.SetCampingOptionEnabled(ctx, f.admin, option.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)

	entries, err := f.repos.Audit.ListByTarget(ctx, domain.AuditTargetCampingOption, option.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionUpdate, entries[1].Action)

	// Setting the current value again is a no-op and leaves no audit trail.
	_, err = f.service.SetCampingOptionEnabled(ctx, f.admin, option.ID, false)
	require.NoError(t, err)
	entries, _ = f.repos.Audit.ListByTarget(ctx, domain.AuditTargetCampingOption, option.ID)
	assert.Len(t, entries, 2)
}

func TestSetCampingOptionEnabledUnknownID(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.service.SetCampingOptionEnabled(context.Background(), f.admin, "missing", true)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCreateCampingOptionNegativeDues(t *testing.T) {
	f := newCatalogFixture()
	option := &domain.CampingOption{Name: "Tent", ParticipantDuesCents: -1}
	err := f.service.CreateCampingOption(context.Background(), f.admin, option)
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCatalogWritesAudit(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	option := &domain.CampingOption{Name: "Tent", Enabled: true}
	require.NoError(t, f.service.CreateCampingOption(ctx, f.admin, option))

	entries, err := f.repos.Audit.ListByTarget(ctx, domain.AuditTargetCampingOption, option.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)
	assert.Equal(t, f.admin.ID, entries[0].AdminUserID)
}
