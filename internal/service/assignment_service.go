package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	"github.com/kwsc-digital/efiling-api/internal/repository"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type assignmentFileStore interface {
	GetByID(ctx context.Context, id string) (*models.File, error)
}

type assignmentWorkflowStore interface {
	GetByFileID(ctx context.Context, fileID string) (*models.FileWorkflow, error)
	GetStage(ctx context.Context, id string) (*models.WorkflowStage, error)
	ListTransitionTargets(ctx context.Context, fromStageID string) ([]models.TransitionTarget, error)
	ApplyAssignment(ctx context.Context, params repository.AssignmentParams) error
}

type roleGroupStore interface {
	GetByID(ctx context.Context, id string) (*models.RoleGroup, error)
}

type stateChangeNotifier interface {
	NotifyStateChange(ctx context.Context, change StateChange)
}

type transitionObserver interface {
	ObserveTransition(actionType string, slaBreached bool)
}

// AssignmentService advances files through their workflow: it authorizes the
// actor against the current stage, selects the next stage for the target
// user, and applies the transition transactionally.
type AssignmentService struct {
	files      assignmentFileStore
	workflows  assignmentWorkflowStore
	identities efilingUserStore
	roleGroups roleGroupStore
	notifier   stateChangeNotifier
	metrics    transitionObserver
	logger     *zap.Logger
	now        func() time.Time
}

// NewAssignmentService constructs the service. notifier and metrics may be nil.
func NewAssignmentService(
	files assignmentFileStore,
	workflows assignmentWorkflowStore,
	identities efilingUserStore,
	roleGroups roleGroupStore,
	notifier stateChangeNotifier,
	metrics transitionObserver,
	logger *zap.Logger,
) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		files:      files,
		workflows:  workflows,
		identities: identities,
		roleGroups: roleGroups,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Assign forwards a file from its current stage to the first eligible next
// stage for the target user.
func (s *AssignmentService) Assign(ctx context.Context, fileID, actorUserID string, req dto.AssignFileRequest) (*dto.AssignFileResult, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}

	actor, err := s.identities.GetByUserID(ctx, actorUserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve actor")
	}
	if actor == nil || !actor.IsActive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "actor has no active e-filing account")
	}

	target, err := s.identities.GetByUserID(ctx, req.ToUserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve target user")
	}
	if target == nil || !target.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "target user has no active e-filing account")
	}

	workflow, err := s.workflows.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow")
	}
	if workflow == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "workflow not initialized for this file")
	}
	if workflow.WorkflowStatus != models.WorkflowStatusInProgress {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("workflow is %s", workflow.WorkflowStatus))
	}

	stage, err := s.workflows.GetStage(ctx, workflow.CurrentStageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current stage")
	}
	if stage == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "current stage not found")
	}

	authorized, err := s.stageAllows(ctx, stage.RoleGroupID, actor.RoleCode)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to act at the current stage")
	}

	candidate, err := s.selectTransition(ctx, stage.ID, target.RoleCode)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no eligible next stage for the target user")
	}

	now := s.now().UTC()
	var slaDeadline *time.Time
	if candidate.SLAHours != nil {
		deadline := now.Add(time.Duration(*candidate.SLAHours) * time.Hour)
		slaDeadline = &deadline
	}
	slaBreachedAtAction := workflow.SLABreached(now)

	params := repository.AssignmentParams{
		WorkflowID:      workflow.ID,
		FileID:          file.ID,
		ActorID:         actorUserID,
		TargetUserID:    req.ToUserID,
		FromUserID:      workflow.CurrentAssigneeID,
		FromDepartment:  actor.DepartmentID,
		ToDepartment:    target.DepartmentID,
		FromStageID:     stage.ID,
		ToStageID:       candidate.StageID,
		ExpectedStageID: req.ExpectedStageID,
		SLADeadline:     slaDeadline,
		SLABreached:     slaBreachedAtAction,
		Remarks:         req.Remarks,
	}
	if err := s.workflows.ApplyAssignment(ctx, params); err != nil {
		if errors.Is(err, repository.ErrStageChanged) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "file moved to another stage, reload and retry")
		}
		s.logger.Error("assignment transaction failed",
			zap.String("file_id", fileID),
			zap.String("actor_id", actorUserID),
			zap.String("to_stage_id", candidate.StageID),
			zap.Error(err),
		)
		return nil, appErrors.Clone(appErrors.ErrAssignmentFailed, "")
	}

	if s.metrics != nil {
		s.metrics.ObserveTransition(models.WorkflowActionForward, slaBreachedAtAction)
	}
	if s.notifier != nil {
		s.notifier.NotifyStateChange(ctx, StateChange{
			FileID:         file.ID,
			ActorID:        actorUserID,
			TargetUserID:   req.ToUserID,
			CreatorID:      file.CreatedBy,
			Type:           models.NotificationTypeAssignment,
			Message:        fmt.Sprintf("File %s forwarded to stage %s", file.FileNumber, candidate.StageName),
			Priority:       models.NotificationPriorityNormal,
			ActionRequired: true,
		})
	}

	return &dto.AssignFileResult{
		FileID:      file.ID,
		ToUserID:    req.ToUserID,
		StageID:     candidate.StageID,
		StageName:   candidate.StageName,
		SLADeadline: slaDeadline,
	}, nil
}

// stageAllows checks the actor's role code against a stage's role group.
// A nil role group means the stage is ungated.
func (s *AssignmentService) stageAllows(ctx context.Context, roleGroupID *string, roleCode string) (bool, error) {
	if roleGroupID == nil || *roleGroupID == "" {
		return true, nil
	}
	group, err := s.roleGroups.GetByID(ctx, *roleGroupID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role group")
	}
	if group == nil {
		// Dangling role_group_id: treat as ungated, matching the unset case.
		s.logger.Warn("stage references missing role group", zap.String("role_group_id", *roleGroupID))
		return true, nil
	}
	return MatchRole(roleCode, group.RoleCodes), nil
}

// selectTransition picks the first active outgoing transition, ordered by
// target stage_order, whose target stage is ungated or matches the target
// user's role. When several targets are eligible the ordering decides; this
// first-match rule is deliberate, not an ambiguity error.
func (s *AssignmentService) selectTransition(ctx context.Context, fromStageID, targetRoleCode string) (*models.TransitionTarget, error) {
	targets, err := s.workflows.ListTransitionTargets(ctx, fromStageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enumerate transitions")
	}
	for i := range targets {
		eligible, err := s.stageAllows(ctx, targets[i].RoleGroupID, targetRoleCode)
		if err != nil {
			return nil, err
		}
		if eligible {
			return &targets[i], nil
		}
	}
	return nil, nil
}
