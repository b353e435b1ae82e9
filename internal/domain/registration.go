package domain

import "time"

// RegistrationStatus enumerates lifecycle states for registrations.
type RegistrationStatus string

const (
	RegistrationStatusPending    RegistrationStatus = "PENDING"
	RegistrationStatusConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationStatusWaitlisted RegistrationStatus = "WAITLISTED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

// Registration is the aggregate for a member's sign-up in a camp year.
type Registration struct {
	ID            string
	UserID        string
	Year          int
	Status        RegistrationStatus
	ArrivalDate   *time.Time
	DepartureDate *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   *time.Time
}

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationStatusPending:    {RegistrationStatusConfirmed, RegistrationStatusWaitlisted, RegistrationStatusCancelled},
	RegistrationStatusConfirmed:  {RegistrationStatusCancelled},
	RegistrationStatusWaitlisted: {RegistrationStatusPending, RegistrationStatusConfirmed, RegistrationStatusCancelled},
	RegistrationStatusCancelled:  {},
}

// CanTransitionTo reports whether a status change is allowed.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, candidate := range registrationTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
