package dto

import (
	"time"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// AdminUpdateRegistrationRequest payload. Absent fields are left untouched;
// shift_ids and camping_option_ids, when present, are the desired final sets.
type AdminUpdateRegistrationRequest struct {
	Status           *domain.RegistrationStatus `json:"status"`
	ArrivalDate      *time.Time                 `json:"arrival_date"`
	DepartureDate    *time.Time                 `json:"departure_date"`
	Notes            *string                    `json:"notes"`
	ShiftIDs         *[]string                  `json:"shift_ids"`
	CampingOptionIDs *[]string                  `json:"camping_option_ids"`
	Reason           string                     `json:"reason"`
	Notify           bool                       `json:"notify"`
}

// AdminCancelRegistrationRequest payload.
type AdminCancelRegistrationRequest struct {
	Reason      string `json:"reason"`
	IssueRefund bool   `json:"issue_refund"`
}

// CancelRegistrationResponse reports the cancellation outcome, including
// whether any refund now needs manual handling.
type CancelRegistrationResponse struct {
	Registration  RegistrationResponse `json:"registration"`
	RefundedCents int64                `json:"refunded_cents"`
	ManualRefund  bool                 `json:"manual_refund"`
	Message       string               `json:"message"`
}

// AuditEntryResponse representation.
type AuditEntryResponse struct {
	ID            string                 `json:"id"`
	AdminUserID   string                 `json:"admin_user_id"`
	Action        domain.AuditAction     `json:"action"`
	TargetType    domain.AuditTargetType `json:"target_type"`
	TargetID      string                 `json:"target_id"`
	OldValue      map[string]any         `json:"old_value,omitempty"`
	NewValue      map[string]any         `json:"new_value,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	TransactionID string                 `json:"transaction_id"`
	CreatedAt     time.Time              `json:"created_at"`
}

// StatsResponse mirrors the in-process counters.
type StatsResponse struct {
	Requests map[string]int64 `json:"requests"`
	Errors   map[string]int64 `json:"errors"`
	Payments map[string]int64 `json:"payments"`
}
