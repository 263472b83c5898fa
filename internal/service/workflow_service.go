package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type workflowStore interface {
	GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	FirstStage(ctx context.Context, templateID string) (*models.WorkflowStage, error)
	GetByFileID(ctx context.Context, fileID string) (*models.FileWorkflow, error)
	Create(ctx context.Context, workflow *models.FileWorkflow) error
	List(ctx context.Context, filter models.WorkflowFilter) ([]models.WorkflowListItem, error)
}

// WorkflowService creates and lists file workflow instances.
type WorkflowService struct {
	workflows       workflowStore
	files           assignmentFileStore
	defaultSLAHours int
	logger          *zap.Logger
	now             func() time.Time
}

// NewWorkflowService constructs the service.
func NewWorkflowService(workflows workflowStore, files assignmentFileStore, defaultSLAHours int, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultSLAHours <= 0 {
		defaultSLAHours = 24
	}
	return &WorkflowService{
		workflows:       workflows,
		files:           files,
		defaultSLAHours: defaultSLAHours,
		logger:          logger,
		now:             time.Now,
	}
}

// Create initializes a workflow for a file, seeded at the template's first
// stage. A file can have at most one workflow.
func (s *WorkflowService) Create(ctx context.Context, req dto.CreateWorkflowRequest, createdBy string) (*models.FileWorkflow, error) {
	file, err := s.files.GetByID(ctx, req.FileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}

	existing, err := s.workflows.GetByFileID(ctx, req.FileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing workflow")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "file already has a workflow")
	}

	template, err := s.workflows.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}
	if template == nil || !template.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "workflow template not found")
	}

	firstStage, err := s.workflows.FirstStage(ctx, req.TemplateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load first stage")
	}
	if firstStage == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "workflow template has no stages")
	}

	slaHours := s.defaultSLAHours
	if firstStage.SLAHours != nil && *firstStage.SLAHours > 0 {
		slaHours = *firstStage.SLAHours
	}
	deadline := s.now().UTC().Add(time.Duration(slaHours) * time.Hour)

	workflow := &models.FileWorkflow{
		FileID:            req.FileID,
		TemplateID:        req.TemplateID,
		CurrentStageID:    firstStage.ID,
		CurrentAssigneeID: req.CurrentAssigneeID,
		WorkflowStatus:    models.WorkflowStatusInProgress,
		SLADeadline:       &deadline,
		CreatedBy:         createdBy,
	}
	if err := s.workflows.Create(ctx, workflow); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workflow")
	}
	return workflow, nil
}

// List returns in-flight workflows with sla_breached computed lazily against
// the current time.
func (s *WorkflowService) List(ctx context.Context, query dto.WorkflowQuery) ([]models.WorkflowListItem, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if query.Page > 1 {
		offset = (query.Page - 1) * limit
	}
	items, err := s.workflows.List(ctx, models.WorkflowFilter{
		UserID:       query.UserID,
		Status:       query.Status,
		DepartmentID: query.DepartmentID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workflows")
	}
	now := s.now().UTC()
	for i := range items {
		items[i].SLABreach = items[i].SLABreached(now)
	}
	return items, nil
}
