package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type notificationStore interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type fileParticipantStore interface {
	ParticipantIDs(ctx context.Context, fileID string) ([]string, error)
}

type notificationObserver interface {
	ObserveNotifications(count int)
}

// StateChange describes a state-changing action to fan notifications out for.
type StateChange struct {
	FileID         string
	ActorID        string
	TargetUserID   string
	CreatorID      string
	Type           models.NotificationType
	Message        string
	Priority       models.NotificationPriority
	ActionRequired bool
}

// NotificationService emits notification rows on state changes. Emission is
// best-effort: failures are logged and never propagated to the triggering
// operation.
type NotificationService struct {
	repo         notificationStore
	participants fileParticipantStore
	metrics      notificationObserver
	logger       *zap.Logger
	enabled      bool
}

// NewNotificationService constructs the service. participants and metrics
// may be nil.
func NewNotificationService(repo notificationStore, participants fileParticipantStore, metrics notificationObserver, enabled bool, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:         repo,
		participants: participants,
		metrics:      metrics,
		logger:       logger,
		enabled:      enabled,
	}
}

// NotifyStateChange inserts one notification per affected user. The actor is
// never notified of their own action, and each recipient gets at most one
// row per triggering event regardless of how many roles they hold on the
// file (target, creator, past participant).
func (s *NotificationService) NotifyStateChange(ctx context.Context, change StateChange) {
	if !s.enabled || s.repo == nil {
		return
	}

	recipients := make([]string, 0, 4)
	seen := map[string]struct{}{change.ActorID: {}}
	add := func(userID string) {
		if userID == "" {
			return
		}
		if _, dup := seen[userID]; dup {
			return
		}
		seen[userID] = struct{}{}
		recipients = append(recipients, userID)
	}

	add(change.TargetUserID)
	add(change.CreatorID)
	if s.participants != nil {
		participantIDs, err := s.participants.ParticipantIDs(ctx, change.FileID)
		if err != nil {
			s.logger.Warn("failed to resolve file participants", zap.String("file_id", change.FileID), zap.Error(err))
		} else {
			for _, id := range participantIDs {
				add(id)
			}
		}
	}

	if len(recipients) == 0 {
		return
	}

	notifications := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		notifications = append(notifications, models.Notification{
			UserID:         userID,
			FileID:         change.FileID,
			Type:           change.Type,
			Message:        change.Message,
			Priority:       change.Priority,
			ActionRequired: change.ActionRequired && userID == change.TargetUserID,
		})
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("failed to insert notifications",
			zap.String("file_id", change.FileID),
			zap.Int("recipients", len(notifications)),
			zap.Error(err),
		)
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveNotifications(len(notifications))
	}
}

// List returns the caller's notifications.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	notifications, err := s.repo.ListForUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
