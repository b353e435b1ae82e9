package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/repository"
)

// memStore is shared in-memory state behind the fake repositories.
type memStore struct {
	users          map[string]*domain.User
	registrations  map[string]*domain.Registration
	categories     map[string]*domain.JobCategory
	jobs           map[string]*domain.Job
	shifts         map[string]*domain.Shift
	options        map[string]*domain.CampingOption
	shiftSignups   []domain.ShiftSignup
	campingSignups []domain.CampingOptionSignup
	payments       map[string]*domain.Payment
	notifications  []domain.Notification
	audits         []domain.AdminAudit
	resets         map[string]*repository.PasswordResetToken
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*domain.User{},
		registrations: map[string]*domain.Registration{},
		categories:    map[string]*domain.JobCategory{},
		jobs:          map[string]*domain.Job{},
		shifts:        map[string]*domain.Shift{},
		options:       map[string]*domain.CampingOption{},
		payments:      map[string]*domain.Payment{},
		resets:        map[string]*repository.PasswordResetToken{},
	}
}

// newMemRepos builds a Repos bundle over one shared store.
func newMemRepos(store *memStore) repository.Repos {
	return repository.Repos{
		Users:          &memUserRepo{store},
		Registrations:  &memRegistrationRepo{store},
		JobCategories:  &memJobCategoryRepo{store},
		Jobs:           &memJobRepo{store},
		Shifts:         &memShiftRepo{store},
		CampingOptions: &memCampingOptionRepo{store},
		Signups:        &memSignupRepo{store},
		Payments:       &memPaymentRepo{store},
		Notifications:  &memNotificationRepo{store},
		Audit:          &memAuditRepo{store},
		PasswordResets: &memResetRepo{store},
	}
}

// memTxManager runs the callback against the same store. Rollback is not
// simulated; failure-path tests assert on returned errors instead.
type memTxManager struct {
	repos repository.Repos
}

func (m *memTxManager) WithinTx(_ context.Context, fn func(repository.Repos) error) error {
	return fn(m.repos)
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListWithFilter(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.store.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type memRegistrationRepo struct{ store *memStore }

func (r *memRegistrationRepo) Create(_ context.Context, reg *domain.Registration) error {
	reg.ID = uuid.NewString()
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	clone := *reg
	r.store.registrations[reg.ID] = &clone
	return nil
}

func (r *memRegistrationRepo) Update(_ context.Context, reg *domain.Registration) error {
	if _, ok := r.store.registrations[reg.ID]; !ok {
		return pgx.ErrNoRows
	}
	reg.UpdatedAt = time.Now()
	clone := *reg
	r.store.registrations[reg.ID] = &clone
	return nil
}

func (r *memRegistrationRepo) GetByID(_ context.Context, id string) (*domain.Registration, error) {
	reg, ok := r.store.registrations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *reg
	return &clone, nil
}

func (r *memRegistrationRepo) GetByUserAndYear(_ context.Context, userID string, year int) (*domain.Registration, error) {
	for _, reg := range r.store.registrations {
		if reg.UserID == userID && reg.Year == year {
			clone := *reg
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memRegistrationRepo) ListWithFilter(_ context.Context, filter repository.RegistrationFilter) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range r.store.registrations {
		if filter.UserID != nil && reg.UserID != *filter.UserID {
			continue
		}
		if filter.Year != nil && reg.Year != *filter.Year {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if reg.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memJobCategoryRepo struct{ store *memStore }

func (r *memJobCategoryRepo) Create(_ context.Context, category *domain.JobCategory) error {
	category.ID = uuid.NewString()
	clone := *category
	r.store.categories[category.ID] = &clone
	return nil
}

func (r *memJobCategoryRepo) Update(_ context.Context, category *domain.JobCategory) error {
	if _, ok := r.store.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *category
	r.store.categories[category.ID] = &clone
	return nil
}

func (r *memJobCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.categories, id)
	return nil
}

func (r *memJobCategoryRepo) GetByID(_ context.Context, id string) (*domain.JobCategory, error) {
	category, ok := r.store.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *category
	return &clone, nil
}

func (r *memJobCategoryRepo) List(_ context.Context) ([]domain.JobCategory, error) {
	var out []domain.JobCategory
	for _, category := range r.store.categories {
		out = append(out, *category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memJobRepo struct{ store *memStore }

func (r *memJobRepo) Create(_ context.Context, job *domain.Job) error {
	job.ID = uuid.NewString()
	clone := *job
	r.store.jobs[job.ID] = &clone
	return nil
}

func (r *memJobRepo) Update(_ context.Context, job *domain.Job) error {
	if _, ok := r.store.jobs[job.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *job
	r.store.jobs[job.ID] = &clone
	return nil
}

func (r *memJobRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.jobs, id)
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	job, ok := r.store.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (r *memJobRepo) List(_ context.Context) ([]domain.Job, error) {
	var out []domain.Job
	for _, job := range r.store.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memShiftRepo struct{ store *memStore }

func (r *memShiftRepo) Create(_ context.Context, shift *domain.Shift) error {
	shift.ID = uuid.NewString()
	clone := *shift
	r.store.shifts[shift.ID] = &clone
	return nil
}

func (r *memShiftRepo) Update(_ context.Context, shift *domain.Shift) error {
	if _, ok := r.store.shifts[shift.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *shift
	r.store.shifts[shift.ID] = &clone
	return nil
}

func (r *memShiftRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.shifts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.shifts, id)
	return nil
}

func (r *memShiftRepo) GetByID(_ context.Context, id string) (*domain.Shift, error) {
	shift, ok := r.store.shifts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *shift
	return &clone, nil
}

func (r *memShiftRepo) ListByJob(_ context.Context, jobID string) ([]domain.Shift, error) {
	var out []domain.Shift
	for _, shift := range r.store.shifts {
		if shift.JobID == jobID {
			out = append(out, *shift)
		}
	}
	return out, nil
}

func (r *memShiftRepo) List(_ context.Context) ([]domain.Shift, error) {
	var out []domain.Shift
	for _, shift := range r.store.shifts {
		out = append(out, *shift)
	}
	return out, nil
}

func (r *memShiftRepo) CountSignups(_ context.Context, shiftID string) (int, error) {
	count := 0
	for _, signup := range r.store.shiftSignups {
		if signup.ShiftID == shiftID {
			count++
		}
	}
	return count, nil
}

type memCampingOptionRepo struct{ store *memStore }

func (r *memCampingOptionRepo) Create(_ context.Context, option *domain.CampingOption) error {
	option.ID = uuid.NewString()
	clone := *option
	r.store.options[option.ID] = &clone
	return nil
}

func (r *memCampingOptionRepo) Update(_ context.Context, option *domain.CampingOption) error {
	if _, ok := r.store.options[option.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *option
	r.store.options[option.ID] = &clone
	return nil
}

func (r *memCampingOptionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.options[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.options, id)
	return nil
}

func (r *memCampingOptionRepo) GetByID(_ context.Context, id string) (*domain.CampingOption, error) {
	option, ok := r.store.options[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *option
	return &clone, nil
}

func (r *memCampingOptionRepo) List(_ context.Context, enabledOnly bool) ([]domain.CampingOption, error) {
	var out []domain.CampingOption
	for _, option := range r.store.options {
		if enabledOnly && !option.Enabled {
			continue
		}
		out = append(out, *option)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCampingOptionRepo) CountSignups(_ context.Context, optionID string) (int, error) {
	count := 0
	for _, signup := range r.store.campingSignups {
		if signup.CampingOptionID == optionID {
			count++
		}
	}
	return count, nil
}

type memSignupRepo struct{ store *memStore }

func (r *memSignupRepo) CreateShiftSignup(_ context.Context, signup *domain.ShiftSignup) error {
	signup.ID = uuid.NewString()
	signup.CreatedAt = time.Now()
	r.store.shiftSignups = append(r.store.shiftSignups, *signup)
	return nil
}

func (r *memSignupRepo) DeleteShiftSignup(_ context.Context, registrationID, shiftID string) error {
	kept := r.store.shiftSignups[:0]
	for _, signup := range r.store.shiftSignups {
		if signup.RegistrationID == registrationID && signup.ShiftID == shiftID {
			continue
		}
		kept = append(kept, signup)
	}
	r.store.shiftSignups = kept
	return nil
}

func (r *memSignupRepo) DeleteShiftSignupsByRegistration(_ context.Context, registrationID string) error {
	kept := r.store.shiftSignups[:0]
	for _, signup := range r.store.shiftSignups {
		if signup.RegistrationID == registrationID {
			continue
		}
		kept = append(kept, signup)
	}
	r.store.shiftSignups = kept
	return nil
}

func (r *memSignupRepo) ListShiftSignups(_ context.Context, registrationID string) ([]domain.ShiftSignup, error) {
	var out []domain.ShiftSignup
	for _, signup := range r.store.shiftSignups {
		if signup.RegistrationID == registrationID {
			out = append(out, signup)
		}
	}
	return out, nil
}

func (r *memSignupRepo) CreateCampingSignup(_ context.Context, signup *domain.CampingOptionSignup) error {
	signup.ID = uuid.NewString()
	signup.CreatedAt = time.Now()
	r.store.campingSignups = append(r.store.campingSignups, *signup)
	return nil
}

func (r *memSignupRepo) DeleteCampingSignup(_ context.Context, registrationID, optionID string) error {
	kept := r.store.campingSignups[:0]
	for _, signup := range r.store.campingSignups {
		if signup.RegistrationID == registrationID && signup.CampingOptionID == optionID {
			continue
		}
		kept = append(kept, signup)
	}
	r.store.campingSignups = kept
	return nil
}

func (r *memSignupRepo) ListCampingSignups(_ context.Context, registrationID string) ([]domain.CampingOptionSignup, error) {
	var out []domain.CampingOptionSignup
	for _, signup := range r.store.campingSignups {
		if signup.RegistrationID == registrationID {
			out = append(out, signup)
		}
	}
	return out, nil
}

type memPaymentRepo struct{ store *memStore }

func (r *memPaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	clone := *payment
	r.store.payments[payment.ID] = &clone
	return nil
}

func (r *memPaymentRepo) Update(_ context.Context, payment *domain.Payment) error {
	if _, ok := r.store.payments[payment.ID]; !ok {
		return pgx.ErrNoRows
	}
	payment.UpdatedAt = time.Now()
	clone := *payment
	r.store.payments[payment.ID] = &clone
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	payment, ok := r.store.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *payment
	return &clone, nil
}

func (r *memPaymentRepo) GetByProviderRef(_ context.Context, providerRef string) (*domain.Payment, error) {
	for _, payment := range r.store.payments {
		if payment.ProviderRef != nil && *payment.ProviderRef == providerRef {
			clone := *payment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memPaymentRepo) ListByRegistration(_ context.Context, registrationID string) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, payment := range r.store.payments {
		if payment.RegistrationID == registrationID {
			out = append(out, *payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memPaymentRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, payment := range r.store.payments {
		if payment.UserID == userID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

type memNotificationRepo struct{ store *memStore }

func (r *memNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	r.store.notifications = append(r.store.notifications, *notification)
	return nil
}

func (r *memNotificationRepo) MarkSent(_ context.Context, id string) error {
	now := time.Now()
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id {
			r.store.notifications[i].SentAt = &now
			return nil
		}
	}
	return nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, notification := range r.store.notifications {
		if notification.UserID == userID {
			out = append(out, notification)
		}
	}
	return out, nil
}

type memAuditRepo struct{ store *memStore }

func (r *memAuditRepo) Create(_ context.Context, entry *domain.AdminAudit) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *memAuditRepo) ListWithFilter(_ context.Context, filter repository.AuditFilter) ([]domain.AdminAudit, error) {
	var out []domain.AdminAudit
	for _, entry := range r.store.audits {
		if filter.AdminUserID != nil && entry.AdminUserID != *filter.AdminUserID {
			continue
		}
		if filter.Action != nil && entry.Action != *filter.Action {
			continue
		}
		if filter.TargetType != nil && entry.TargetType != *filter.TargetType {
			continue
		}
		if filter.TargetID != nil && entry.TargetID != *filter.TargetID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *memAuditRepo) ListByTarget(_ context.Context, targetType domain.AuditTargetType, targetID string) ([]domain.AdminAudit, error) {
	var out []domain.AdminAudit
	for _, entry := range r.store.audits {
		if entry.TargetType == targetType && entry.TargetID == targetID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memResetRepo struct{ store *memStore }

func (r *memResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	clone := *token
	r.store.resets[token.Token] = &clone
	return nil
}

func (r *memResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.store.resets[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *token
	return &clone, nil
}

func (r *memResetRepo) MarkUsed(_ context.Context, id string) error {
	now := time.Now()
	for _, token := range r.store.resets {
		if token.ID == id {
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}
