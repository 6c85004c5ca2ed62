package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/query"
)

const notificationSelect = `
		SELECT id, user_id, title, message, type, channel, is_read, read_at, created_at
		FROM notifications`

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification, event *model.OutboxEvent) error {
	query := `
		INSERT INTO notifications (
			id, user_id, title, message, type, channel, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now().UTC()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			notification.ID,
			notification.UserID,
			notification.Title,
			notification.Message,
			notification.Type,
			notification.Channel,
			notification.IsRead,
			notification.CreatedAt,
		); err != nil {
			return mapError(err, "notification")
		}
		if event != nil {
			return insertOutboxEvent(ctx, tx, event)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// MarkRead only touches notifications owned by userID, so another user's id
// reads as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND user_id = $3
	`
	result, err := r.db.ExecContext(ctx, query, at, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", mapError(err, "notification"))
	}
	return checkAffected(result, "notification")
}

func (r *notificationRepository) List(ctx context.Context, userID uuid.UUID, filters *model.NotificationFilters, page pagination.Params) ([]*model.Notification, int, error) {
	if filters == nil {
		filters = &model.NotificationFilters{}
	}
	q := query.New().
		Eq("user_id", userID).
		Eq("is_read", filters.Read).
		Eq("type", filters.Type)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM notifications")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	listSQL, args := q.Select(notificationSelect, "created_at DESC, id", page.Limit, page.Offset)
	notifications := []*model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}
