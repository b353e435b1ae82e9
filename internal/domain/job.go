package domain

import "time"

// JobCategory groups jobs for the sign-up catalog.
type JobCategory struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job describes a camp job members sign up for via shifts.
type Job struct {
	ID             string
	CategoryID     string
	Name           string
	Location       string
	StaffOnly      bool
	AlwaysRequired bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
