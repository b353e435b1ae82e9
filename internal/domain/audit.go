package domain

import "time"

// AuditAction captures what kind of administrative mutation occurred.
type AuditAction string

const (
	AuditActionCreate               AuditAction = "CREATE"
	AuditActionUpdate               AuditAction = "UPDATE"
	AuditActionDelete               AuditAction = "DELETE"
	AuditActionCancelRegistration   AuditAction = "CANCEL_REGISTRATION"
	AuditActionRefund               AuditAction = "REFUND"
	AuditActionManualRefundRequired AuditAction = "MANUAL_REFUND_REQUIRED"
)

// AuditTargetType names the record kind an audit entry refers to.
type AuditTargetType string

const (
	AuditTargetRegistration  AuditTargetType = "REGISTRATION"
	AuditTargetUser          AuditTargetType = "USER"
	AuditTargetPayment       AuditTargetType = "PAYMENT"
	AuditTargetShiftSignup   AuditTargetType = "SHIFT_SIGNUP"
	AuditTargetCampingSignup AuditTargetType = "CAMPING_OPTION_SIGNUP"
	AuditTargetJob           AuditTargetType = "JOB"
	AuditTargetJobCategory   AuditTargetType = "JOB_CATEGORY"
	AuditTargetShift         AuditTargetType = "SHIFT"
	AuditTargetCampingOption AuditTargetType = "CAMPING_OPTION"
)

// AdminAudit is an immutable record of an administrative mutation.
// Entries born in the same service call share a TransactionID.
type AdminAudit struct {
	ID            string
	AdminUserID   string
	Action        AuditAction
	TargetType    AuditTargetType
	TargetID      string
	OldValue      map[string]any
	NewValue      map[string]any
	Reason        string
	TransactionID string
	CreatedAt     time.Time
}
