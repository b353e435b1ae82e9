package dto

import (
	"time"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// CatalogResponse is the public registration catalog.
type CatalogResponse struct {
	Year             int                     `json:"year"`
	RegistrationOpen bool                    `json:"registration_open"`
	Currency         string                  `json:"currency"`
	CampingOptions   []CampingOptionResponse `json:"camping_options"`
	Categories       []JobCategoryResponse   `json:"job_categories"`
	Jobs             []JobResponse           `json:"jobs"`
	Shifts           []ShiftResponse         `json:"shifts"`
}

// JobCategoryResponse representation.
type JobCategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// JobResponse representation.
type JobResponse struct {
	ID             string `json:"id"`
	CategoryID     string `json:"category_id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	StaffOnly      bool   `json:"staff_only"`
	AlwaysRequired bool   `json:"always_required"`
}

// ShiftResponse includes live occupancy so clients can grey out full shifts.
type ShiftResponse struct {
	ID               string           `json:"id"`
	JobID            string           `json:"job_id"`
	Name             string           `json:"name"`
	Day              domain.DayOfWeek `json:"day"`
	StartTime        string           `json:"start_time"`
	EndTime          string           `json:"end_time"`
	MaxRegistrations int              `json:"max_registrations"`
	SignupCount      int              `json:"signup_count"`
}

// CampingOptionResponse representation.
type CampingOptionResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Enabled              bool      `json:"enabled"`
	WorkShiftsRequired   int       `json:"work_shifts_required"`
	ParticipantDuesCents int64     `json:"participant_dues_cents"`
	StaffDuesCents       int64     `json:"staff_dues_cents"`
	MaxSignups           int       `json:"max_signups"`
	CreatedAt            time.Time `json:"created_at"`
}

// UpsertJobCategoryRequest payload.
type UpsertJobCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpsertJobRequest payload.
type UpsertJobRequest struct {
	CategoryID     string `json:"category_id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
	StaffOnly      bool   `json:"staff_only"`
	AlwaysRequired bool   `json:"always_required"`
}

// UpsertShiftRequest payload.
type UpsertShiftRequest struct {
	JobID            string           `json:"job_id"`
	Name             string           `json:"name"`
	Day              domain.DayOfWeek `json:"day"`
	StartTime        string           `json:"start_time"`
	EndTime          string           `json:"end_time"`
	MaxRegistrations int              `json:"max_registrations"`
}

// UpsertCampingOptionRequest payload.
type UpsertCampingOptionRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Enabled              bool   `json:"enabled"`
	WorkShiftsRequired   int    `json:"work_shifts_required"`
	ParticipantDuesCents int64  `json:"participant_dues_cents"`
	StaffDuesCents       int64  `json:"staff_dues_cents"`
	MaxSignups           int    `json:"max_signups"`
}

// SetCampingOptionEnabledRequest payload.
type SetCampingOptionEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}
