package domain

import "time"

// NotificationType classifies outbound member notifications.
type NotificationType string

const (
	NotificationRegistrationCreated   NotificationType = "REGISTRATION_CREATED"
	NotificationRegistrationConfirmed NotificationType = "REGISTRATION_CONFIRMED"
	NotificationRegistrationUpdated   NotificationType = "REGISTRATION_UPDATED"
	NotificationRegistrationCancelled NotificationType = "REGISTRATION_CANCELLED"
	NotificationPaymentCompleted      NotificationType = "PAYMENT_COMPLETED"
	NotificationPaymentRefunded       NotificationType = "PAYMENT_REFUNDED"
)

// Notification is a persisted record of a message sent to a user.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Subject   string
	Body      string
	SentAt    *time.Time
	CreatedAt time.Time
}
