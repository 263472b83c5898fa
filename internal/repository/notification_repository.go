package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

// NotificationRepository persists notifications read by polling clients.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts one notification row per recipient.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	const query = `INSERT INTO efiling_notifications
	(id, user_id, file_id, type, message, priority, action_required, is_read, created_at)
	VALUES (:id, :user_id, :file_id, :type, :message, :priority, :action_required, :is_read, :created_at)`
	now := time.Now().UTC()
	for i := range notifications {
		if notifications[i].ID == "" {
			notifications[i].ID = uuid.NewString()
		}
		if notifications[i].CreatedAt.IsZero() {
			notifications[i].CreatedAt = now
		}
		if notifications[i].Priority == "" {
			notifications[i].Priority = models.NotificationPriorityNormal
		}
		if _, err := r.db.NamedExecContext(ctx, query, notifications[i]); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	return nil
}

// ListForUser returns a recipient's notifications, latest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, user_id, file_id, type, message, priority, action_required, is_read, created_at
	FROM efiling_notifications WHERE user_id = $1`)
	if unreadOnly {
		builder.WriteString(" AND is_read = false")
	}
	builder.WriteString(" ORDER BY created_at DESC")

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, builder.String(), userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips the read flag; only the recipient's own rows match.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE efiling_notifications SET is_read = true WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check notification update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
