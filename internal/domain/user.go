package domain

import "time"

// UserRole determines what a user may do.
type UserRole string

const (
	RoleParticipant UserRole = "PARTICIPANT"
	RoleStaff       UserRole = "STAFF"
	RoleAdmin       UserRole = "ADMIN"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for camp members and admins.
type User struct {
	ID               string
	Name             string
	PlayaName        *string
	Email            string
	PasswordHash     string
	Phone            *string
	EmergencyContact *string
	Role             UserRole
	Status           UserStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsStaff reports whether the user holds a staff or admin role.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
