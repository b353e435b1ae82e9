package domain

import "time"

// DayOfWeek names the camp day a shift runs on.
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "MONDAY"
	DayTuesday   DayOfWeek = "TUESDAY"
	DayWednesday DayOfWeek = "WEDNESDAY"
	DayThursday  DayOfWeek = "THURSDAY"
	DayFriday    DayOfWeek = "FRIDAY"
	DaySaturday  DayOfWeek = "SATURDAY"
	DaySunday    DayOfWeek = "SUNDAY"
)

// Shift is a bounded-capacity time slot of a job.
type Shift struct {
	ID               string
	JobID            string
	Name             string
	Day              DayOfWeek
	StartTime        string
	EndTime          string
	MaxRegistrations int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ShiftSignup links a registration to a shift.
type ShiftSignup struct {
	ID             string
	RegistrationID string
	ShiftID        string
	CreatedAt      time.Time
}
