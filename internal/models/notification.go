package models

import "time"

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotificationTypeAssignment NotificationType = "ASSIGNMENT"
	NotificationTypeComment    NotificationType = "COMMENT"
	NotificationTypeAttachment NotificationType = "ATTACHMENT"
)

// NotificationPriority orders notifications for the polling client.
type NotificationPriority string

const (
	NotificationPriorityNormal NotificationPriority = "NORMAL"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

// Notification is one row read by polling clients. Created on state changes;
// only the read flag is ever mutated, and only by the recipient.
type Notification struct {
	ID             string               `db:"id" json:"id"`
	UserID         string               `db:"user_id" json:"user_id"`
	FileID         string               `db:"file_id" json:"file_id"`
	Type           NotificationType     `db:"type" json:"type"`
	Message        string               `db:"message" json:"message"`
	Priority       NotificationPriority `db:"priority" json:"priority"`
	ActionRequired bool                 `db:"action_required" json:"action_required"`
	IsRead         bool                 `db:"is_read" json:"is_read"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
}
