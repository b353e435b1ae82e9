package dto

import (
	"time"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PasswordResetRequest asks for a reset token by email.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest completes a reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest payload. Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name             *string `json:"name"`
	PlayaName        *string `json:"playa_name"`
	Phone            *string `json:"phone"`
	EmergencyContact *string `json:"emergency_contact"`
}

// AdminUpdateUserRequest payload for the back office.
type AdminUpdateUserRequest struct {
	Role   *domain.UserRole   `json:"role"`
	Status *domain.UserStatus `json:"status"`
	Reason string             `json:"reason"`
}

// UserResponse is the account representation returned to clients.
type UserResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	PlayaName        *string           `json:"playa_name"`
	Email            string            `json:"email"`
	Phone            *string           `json:"phone"`
	EmergencyContact *string           `json:"emergency_contact"`
	Role             domain.UserRole   `json:"role"`
	Status           domain.UserStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// NotificationResponse is a delivered-message record.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Subject   string                  `json:"subject"`
	Body      string                  `json:"body"`
	SentAt    *time.Time              `json:"sent_at"`
	CreatedAt time.Time               `json:"created_at"`
}
