package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

// ErrStageChanged is returned when an assignment was issued against a stale
// current stage and the workflow row moved underneath it.
var ErrStageChanged = errors.New("workflow stage changed since read")

// WorkflowRepository persists workflow templates, stages, transitions and
// live file workflow instances.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository constructs the repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// GetTemplate fetches a workflow template by identifier.
func (r *WorkflowRepository) GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	const query = `SELECT id, name, description, file_type, is_active, created_at, updated_at
	FROM efiling_workflow_templates WHERE id = $1`
	var template models.WorkflowTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get workflow template: %w", err)
	}
	return &template, nil
}

// FirstStage returns the lowest-ordered stage of a template.
func (r *WorkflowRepository) FirstStage(ctx context.Context, templateID string) (*models.WorkflowStage, error) {
	const query = `SELECT id, template_id, name, stage_order, role_group_id, sla_hours
	FROM efiling_workflow_stages WHERE template_id = $1 ORDER BY stage_order ASC LIMIT 1`
	var stage models.WorkflowStage
	if err := r.db.GetContext(ctx, &stage, query, templateID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get first stage: %w", err)
	}
	return &stage, nil
}

// GetStage fetches a stage by identifier.
func (r *WorkflowRepository) GetStage(ctx context.Context, id string) (*models.WorkflowStage, error) {
	const query = `SELECT id, template_id, name, stage_order, role_group_id, sla_hours
	FROM efiling_workflow_stages WHERE id = $1`
	var stage models.WorkflowStage
	if err := r.db.GetContext(ctx, &stage, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get stage: %w", err)
	}
	return &stage, nil
}

// ListTransitionTargets enumerates active outgoing transitions from a stage
// joined with their target stages, ordered by target stage_order ascending.
// The ordering is load-bearing: the assignment engine picks the first
// eligible target.
func (r *WorkflowRepository) ListTransitionTargets(ctx context.Context, fromStageID string) ([]models.TransitionTarget, error) {
	const query = `SELECT st.id AS transition_id, ws.id AS stage_id, ws.name AS stage_name,
       ws.stage_order, ws.role_group_id, ws.sla_hours
	FROM efiling_stage_transitions st
	JOIN efiling_workflow_stages ws ON ws.id = st.to_stage_id
	WHERE st.from_stage_id = $1 AND st.is_active = true
	ORDER BY ws.stage_order ASC`
	var targets []models.TransitionTarget
	if err := r.db.SelectContext(ctx, &targets, query, fromStageID); err != nil {
		return nil, fmt.Errorf("list stage transitions: %w", err)
	}
	return targets, nil
}

// GetByFileID fetches the live workflow instance for a file.
func (r *WorkflowRepository) GetByFileID(ctx context.Context, fileID string) (*models.FileWorkflow, error) {
	const query = `SELECT id, file_id, template_id, current_stage_id, current_assignee_id, workflow_status, sla_deadline, created_by, created_at, updated_at
	FROM efiling_file_workflows WHERE file_id = $1`
	var workflow models.FileWorkflow
	if err := r.db.GetContext(ctx, &workflow, query, fileID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get file workflow: %w", err)
	}
	return &workflow, nil
}

// Create inserts a new workflow instance.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *models.FileWorkflow) error {
	if workflow.ID == "" {
		workflow.ID = uuid.NewString()
	}
	if workflow.WorkflowStatus == "" {
		workflow.WorkflowStatus = models.WorkflowStatusInProgress
	}
	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}
	workflow.UpdatedAt = now
	const query = `INSERT INTO efiling_file_workflows
	(id, file_id, template_id, current_stage_id, current_assignee_id, workflow_status, sla_deadline, created_by, created_at, updated_at)
	VALUES (:id, :file_id, :template_id, :current_stage_id, :current_assignee_id, :workflow_status, :sla_deadline, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, workflow); err != nil {
		return fmt.Errorf("create file workflow: %w", err)
	}
	return nil
}

// List returns workflow instances matching the filter (latest first).
func (r *WorkflowRepository) List(ctx context.Context, filter models.WorkflowFilter) ([]models.WorkflowListItem, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT fw.id, fw.file_id, fw.template_id, fw.current_stage_id, fw.current_assignee_id,
       fw.workflow_status, fw.sla_deadline, fw.created_by, fw.created_at, fw.updated_at,
       f.file_number, f.subject, ws.name AS stage_name, u.full_name AS assignee_name
	FROM efiling_file_workflows fw
	JOIN efiling_files f ON f.id = fw.file_id
	JOIN efiling_workflow_stages ws ON ws.id = fw.current_stage_id
	LEFT JOIN users u ON u.id = fw.current_assignee_id`)

	conditions := make([]string, 0, 3)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("(fw.current_assignee_id = $%d OR fw.created_by = $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("fw.workflow_status = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("f.department_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY fw.updated_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var items []models.WorkflowListItem
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return items, nil
}

// AssignmentParams groups every row touched by one assignment transaction.
type AssignmentParams struct {
	WorkflowID      string
	FileID          string
	ActorID         string
	TargetUserID    string
	FromUserID      *string
	FromDepartment  *string
	ToDepartment    *string
	FromStageID     string
	ToStageID       string
	ExpectedStageID *string
	SLADeadline     *time.Time
	SLABreached     bool
	Remarks         *string
}

// ApplyAssignment executes the forward action as a single transaction:
// lock the workflow row, re-check the current stage, update the file and
// workflow, and append the movement and action log rows. Any failure rolls
// the whole transaction back.
func (r *WorkflowRepository) ApplyAssignment(ctx context.Context, params AssignmentParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment: %w", err)
	}

	var currentStageID string
	const lockQuery = `SELECT current_stage_id FROM efiling_file_workflows WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &currentStageID, lockQuery, params.WorkflowID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("lock workflow row: %w", err)
	}
	// Two concurrent forwards against the same stale stage: the second one
	// lands here after the first commits.
	if currentStageID != params.FromStageID {
		tx.Rollback() //nolint:errcheck
		return ErrStageChanged
	}
	if params.ExpectedStageID != nil && *params.ExpectedStageID != currentStageID {
		tx.Rollback() //nolint:errcheck
		return ErrStageChanged
	}

	now := time.Now().UTC()

	const fileQuery = `UPDATE efiling_files
	SET assigned_to = $1, status = $2, sla_deadline = $3, sla_breached = false, updated_at = $4
	WHERE id = $5`
	if _, err := tx.ExecContext(ctx, fileQuery, params.TargetUserID, models.FileStatusInProgress, params.SLADeadline, now, params.FileID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update file assignment: %w", err)
	}

	const workflowQuery = `UPDATE efiling_file_workflows
	SET current_stage_id = $1, current_assignee_id = $2, sla_deadline = $3, updated_at = $4
	WHERE id = $5`
	if _, err := tx.ExecContext(ctx, workflowQuery, params.ToStageID, params.TargetUserID, params.SLADeadline, now, params.WorkflowID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("update workflow position: %w", err)
	}

	movement := models.FileMovement{
		ID:             uuid.NewString(),
		FileID:         params.FileID,
		FromUserID:     params.FromUserID,
		ToUserID:       params.TargetUserID,
		FromDepartment: params.FromDepartment,
		ToDepartment:   params.ToDepartment,
		ActionType:     models.MovementActionAssigned,
		Remarks:        params.Remarks,
		CreatedAt:      now,
	}
	const movementQuery = `INSERT INTO efiling_file_movements
	(id, file_id, from_user_id, to_user_id, from_department, to_department, action_type, remarks, created_at)
	VALUES (:id, :file_id, :from_user_id, :to_user_id, :from_department, :to_department, :action_type, :remarks, :created_at)`
	if _, err := tx.NamedExecContext(ctx, movementQuery, movement); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert file movement: %w", err)
	}

	action := models.WorkflowAction{
		ID:          uuid.NewString(),
		WorkflowID:  params.WorkflowID,
		FileID:      params.FileID,
		ActorID:     params.ActorID,
		FromStageID: &params.FromStageID,
		ToStageID:   params.ToStageID,
		ActionType:  models.WorkflowActionForward,
		SLABreached: params.SLABreached,
		CreatedAt:   now,
	}
	const actionQuery = `INSERT INTO efiling_workflow_actions
	(id, workflow_id, file_id, actor_id, from_stage_id, to_stage_id, action_type, payload, sla_breached, created_at)
	VALUES (:id, :workflow_id, :file_id, :actor_id, :from_stage_id, :to_stage_id, :action_type, :payload, :sla_breached, :created_at)`
	if _, err := tx.NamedExecContext(ctx, actionQuery, action); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert workflow action: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment: %w", err)
	}
	return nil
}
