package dto

import (
	"time"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// CreateRegistrationRequest payload.
type CreateRegistrationRequest struct {
	CampingOptionIDs []string   `json:"camping_option_ids"`
	ShiftIDs         []string   `json:"shift_ids"`
	ArrivalDate      *time.Time `json:"arrival_date"`
	DepartureDate    *time.Time `json:"departure_date"`
	Notes            string     `json:"notes"`
}

// RegistrationResponse summary.
type RegistrationResponse struct {
	ID            string                    `json:"id"`
	UserID        string                    `json:"user_id"`
	Year          int                       `json:"year"`
	Status        domain.RegistrationStatus `json:"status"`
	ArrivalDate   *time.Time                `json:"arrival_date"`
	DepartureDate *time.Time                `json:"departure_date"`
	Notes         string                    `json:"notes"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	CancelledAt   *time.Time                `json:"cancelled_at"`
}

// RegistrationDetailResponse includes resolved associations.
type RegistrationDetailResponse struct {
	RegistrationResponse
	ShiftSignups   []ShiftSignupResponse   `json:"shift_signups"`
	CampingSignups []CampingSignupResponse `json:"camping_option_signups"`
	Payments       []PaymentResponse       `json:"payments"`
}

// ShiftSignupResponse links a registration to a shift.
type ShiftSignupResponse struct {
	ID        string    `json:"id"`
	ShiftID   string    `json:"shift_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CampingSignupResponse links a registration to a camping option.
type CampingSignupResponse struct {
	ID              string    `json:"id"`
	CampingOptionID string    `json:"camping_option_id"`
	CreatedAt       time.Time `json:"created_at"`
}
