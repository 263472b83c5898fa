package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/repository"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type movementStore interface {
	ListByFile(ctx context.Context, fileID string) ([]repository.MovementRow, error)
	ListSignaturesByFile(ctx context.Context, fileID string) ([]repository.SignatureRow, error)
}

type displayNameResolver interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

// TimelineService reconstructs a file's chronological event history from the
// movement and signature tables. Pure read path; repeated calls without
// intervening writes return identical results.
type TimelineService struct {
	files     assignmentFileStore
	movements movementStore
	names     displayNameResolver
	logger    *zap.Logger
}

// NewTimelineService constructs the service.
func NewTimelineService(files assignmentFileStore, movements movementStore, names displayNameResolver, logger *zap.Logger) *TimelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{files: files, movements: movements, names: names, logger: logger}
}

// Timeline returns the merged, ascending event list for a file: the created
// event, every movement, and every active signature.
func (s *TimelineService) Timeline(ctx context.Context, fileID string) ([]dto.TimelineEvent, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}

	events := make([]dto.TimelineEvent, 0, 8)

	creatorName, err := s.names.DisplayName(ctx, file.CreatedBy)
	if err != nil {
		s.logger.Warn("failed to resolve creator name", zap.String("file_id", fileID), zap.Error(err))
	}
	createdMeta := map[string]string{"file_number": file.FileNumber}
	if creatorName != "" {
		createdMeta["by"] = creatorName
	}
	events = append(events, dto.TimelineEvent{
		Type:      dto.TimelineEventCreated,
		Title:     "File created",
		Timestamp: file.CreatedAt,
		Meta:      createdMeta,
	})

	movements, err := s.movements.ListByFile(ctx, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load movements")
	}
	for _, movement := range movements {
		meta := map[string]string{}
		if movement.FromUserName != nil {
			meta["by"] = *movement.FromUserName
		}
		if movement.ToUserName != nil {
			meta["to"] = *movement.ToUserName
		}
		if movement.ToRoleCode != nil {
			meta["to_role"] = *movement.ToRoleCode
		}
		if movement.ToDepartment != nil {
			meta["to_department"] = *movement.ToDepartment
		}
		if movement.Remarks != nil {
			meta["remarks"] = *movement.Remarks
		}
		events = append(events, dto.TimelineEvent{
			Type:      dto.TimelineEventAssigned,
			Title:     "File assigned",
			Timestamp: movement.CreatedAt,
			Meta:      meta,
		})
	}

	signatures, err := s.movements.ListSignaturesByFile(ctx, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signatures")
	}
	for _, signature := range signatures {
		meta := map[string]string{}
		if signature.SignerName != nil {
			meta["by"] = *signature.SignerName
		}
		if signature.Designation != nil {
			meta["designation"] = *signature.Designation
		}
		events = append(events, dto.TimelineEvent{
			Type:      dto.TimelineEventSigned,
			Title:     "File signed",
			Timestamp: signature.SignedAt,
			Meta:      meta,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}
