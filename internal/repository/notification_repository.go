package repository

import (
	"context"

	"github.com/spec-kit/camp-registration/internal/domain"
)

// NotificationRepository stores outbound notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	MarkSent(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)
}

type notificationRepository struct {
	db Querier
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db Querier) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, type, subject, body, sent_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		notification.UserID,
		notification.Type,
		notification.Subject,
		notification.Body,
		notification.SentAt,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string) error {
	const query = `UPDATE notifications SET sent_at=NOW() WHERE id=$1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, type, subject, body, sent_at, created_at
        FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Type,
			&notification.Subject,
			&notification.Body,
			&notification.SentAt,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}
