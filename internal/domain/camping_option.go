package domain

import "time"

// CampingOption is a way of staying with the camp (tent, RV, shared yurt...)
// with role-dependent dues and a work-shift requirement.
type CampingOption struct {
	ID                   string
	Name                 string
	Description          string
	Enabled              bool
	WorkShiftsRequired   int
	ParticipantDuesCents int64
	StaffDuesCents       int64
	MaxSignups           int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DuesFor returns the dues owed by a user of the given role, in cents.
func (o *CampingOption) DuesFor(role UserRole) int64 {
	if role == RoleStaff || role == RoleAdmin {
		return o.StaffDuesCents
	}
	return o.ParticipantDuesCents
}

// CampingOptionSignup links a registration to a camping option.
type CampingOptionSignup struct {
	ID              string
	RegistrationID  string
	CampingOptionID string
	CreatedAt       time.Time
}
