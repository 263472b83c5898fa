package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
	"github.com/kwsc-digital/efiling-api/pkg/storage"
)

type fileStore interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	List(ctx context.Context, filter models.FileFilter) ([]models.File, error)
	NextFileNumber(ctx context.Context, prefix string) (string, error)
	CreateAttachment(ctx context.Context, attachment *models.FileAttachment) error
	GetAttachment(ctx context.Context, fileID, attachmentID string) (*models.FileAttachment, error)
}

type attachmentSigner interface {
	Generate(attachmentID, relPath string) (string, time.Time, error)
	Parse(token string) (attachmentID, relPath string, expiresAt time.Time, err error)
}

// FileService manages file records and their attachments.
type FileService struct {
	repo             fileStore
	identity         *IdentityService
	store            *storage.LocalStorage
	signer           attachmentSigner
	notifier         stateChangeNotifier
	fileNumberPrefix string
	maxUploadBytes   int64
	logger           *zap.Logger
}

// NewFileService constructs the service. notifier may be nil.
func NewFileService(
	repo fileStore,
	identity *IdentityService,
	store *storage.LocalStorage,
	signer attachmentSigner,
	notifier stateChangeNotifier,
	fileNumberPrefix string,
	maxUploadBytes int64,
	logger *zap.Logger,
) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileNumberPrefix == "" {
		fileNumberPrefix = "KWSC"
	}
	return &FileService{
		repo:             repo,
		identity:         identity,
		store:            store,
		signer:           signer,
		notifier:         notifier,
		fileNumberPrefix: fileNumberPrefix,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

// Create registers a new draft file. The creator must hold an active
// e-filing account.
func (s *FileService) Create(ctx context.Context, req dto.CreateFileRequest, createdBy string) (*models.File, error) {
	scope, err := s.identity.Resolve(ctx, createdBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve creator identity")
	}
	if scope == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "creator has no active e-filing account")
	}

	number, err := s.repo.NextFileNumber(ctx, s.fileNumberPrefix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate file number")
	}

	departmentID := req.DepartmentID
	if departmentID == nil {
		departmentID = scope.DepartmentID
	}
	file := &models.File{
		FileNumber:   number,
		Subject:      req.Subject,
		Status:       models.FileStatusDraft,
		DepartmentID: departmentID,
		CreatedBy:    createdBy,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create file")
	}
	return file, nil
}

// Get fetches a file.
func (s *FileService) Get(ctx context.Context, id string) (*models.File, error) {
	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	return file, nil
}

// List returns files visible to the caller. Non-privileged callers see files
// they created, hold, or that sit in their department.
func (s *FileService) List(ctx context.Context, query dto.FileQuery, callerUserID string) ([]models.File, error) {
	scope, err := s.identity.Resolve(ctx, callerUserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve caller identity")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if query.Page > 1 {
		offset = (query.Page - 1) * limit
	}
	filter := models.FileFilter{
		Status:     query.Status,
		AssignedTo: query.AssignedTo,
		Search:     query.Search,
		Limit:      limit,
		Offset:     offset,
	}
	if scope == nil {
		// Not a participant: only files they created.
		filter.CreatedBy = callerUserID
	} else if !scope.Privileged() {
		if scope.DepartmentID != nil {
			filter.DepartmentID = *scope.DepartmentID
		} else {
			filter.CreatedBy = callerUserID
		}
	}

	files, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return files, nil
}

// AddAttachment stores an uploaded document and returns the attachment with
// a signed download token. The current assignee is notified.
func (s *FileService) AddAttachment(ctx context.Context, fileID, uploadedBy, fileName, contentType string, size int64, r io.Reader) (*dto.AttachmentResponse, error) {
	file, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if s.maxUploadBytes > 0 && size > s.maxUploadBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attachment exceeds the maximum allowed size")
	}

	relPath := filepath.Join("files", file.ID, fmt.Sprintf("%d_%s", time.Now().UTC().UnixNano(), filepath.Base(fileName)))
	if _, err := s.store.SaveStream(relPath, r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
	}

	attachment := &models.FileAttachment{
		FileID:      file.ID,
		FileName:    filepath.Base(fileName),
		StoragePath: relPath,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  uploadedBy,
	}
	if err := s.repo.CreateAttachment(ctx, attachment); err != nil {
		if cleanupErr := s.store.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned attachment file", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attachment")
	}

	if s.notifier != nil {
		var assignee string
		if file.AssignedTo != nil {
			assignee = *file.AssignedTo
		}
		s.notifier.NotifyStateChange(ctx, StateChange{
			FileID:       file.ID,
			ActorID:      uploadedBy,
			TargetUserID: assignee,
			CreatorID:    file.CreatedBy,
			Type:         models.NotificationTypeAttachment,
			Message:      fmt.Sprintf("Document %s attached to file %s", attachment.FileName, file.FileNumber),
			Priority:     models.NotificationPriorityNormal,
		})
	}

	token, expiresAt, err := s.signer.Generate(attachment.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return &dto.AttachmentResponse{
		Attachment:  attachment,
		DownloadURL: fmt.Sprintf("/files/%s/attachments/%s?token=%s", file.ID, attachment.ID, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// OpenAttachment validates a signed token and opens the stored file.
func (s *FileService) OpenAttachment(ctx context.Context, fileID, attachmentID, token string) (*models.FileAttachment, io.ReadCloser, error) {
	tokenAttachmentID, relPath, _, err := s.signer.Parse(token)
	if err != nil || tokenAttachmentID != attachmentID {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	attachment, err := s.repo.GetAttachment(ctx, fileID, attachmentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	if attachment == nil || attachment.StoragePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
	}
	handle, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open attachment")
	}
	return attachment, handle, nil
}
