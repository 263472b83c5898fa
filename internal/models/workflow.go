package models

import "time"

// WorkflowStatus tracks the lifecycle of a file workflow instance.
type WorkflowStatus string

const (
	WorkflowStatusInProgress WorkflowStatus = "IN_PROGRESS"
	WorkflowStatusCompleted  WorkflowStatus = "COMPLETED"
	WorkflowStatusCancelled  WorkflowStatus = "CANCELLED"
)

// WorkflowTemplate is a named ordered collection of stages for a file type.
// Edits affect future routing only; live workflows keep their stage chain.
type WorkflowTemplate struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	FileType    *string   `db:"file_type" json:"file_type,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// WorkflowStage is one step in a template. A nil RoleGroupID means the stage
// is ungated and any active participant may act while a file sits here.
type WorkflowStage struct {
	ID          string  `db:"id" json:"id"`
	TemplateID  string  `db:"template_id" json:"template_id"`
	Name        string  `db:"name" json:"name"`
	StageOrder  int     `db:"stage_order" json:"stage_order"`
	RoleGroupID *string `db:"role_group_id" json:"role_group_id,omitempty"`
	SLAHours    *int    `db:"sla_hours" json:"sla_hours,omitempty"`
}

// StageTransition is a directed edge defining a legal forward move.
type StageTransition struct {
	ID          string `db:"id" json:"id"`
	FromStageID string `db:"from_stage_id" json:"from_stage_id"`
	ToStageID   string `db:"to_stage_id" json:"to_stage_id"`
	IsActive    bool   `db:"is_active" json:"is_active"`
}

// TransitionTarget is a transition joined with its target stage, ordered by
// the target's stage_order when enumerating candidates.
type TransitionTarget struct {
	TransitionID string  `db:"transition_id" json:"transition_id"`
	StageID      string  `db:"stage_id" json:"stage_id"`
	StageName    string  `db:"stage_name" json:"stage_name"`
	StageOrder   int     `db:"stage_order" json:"stage_order"`
	RoleGroupID  *string `db:"role_group_id" json:"role_group_id,omitempty"`
	SLAHours     *int    `db:"sla_hours" json:"sla_hours,omitempty"`
}

// FileWorkflow binds a file to a template and tracks its live position.
// A file has at most one active workflow.
type FileWorkflow struct {
	ID                string         `db:"id" json:"id"`
	FileID            string         `db:"file_id" json:"file_id"`
	TemplateID        string         `db:"template_id" json:"template_id"`
	CurrentStageID    string         `db:"current_stage_id" json:"current_stage_id"`
	CurrentAssigneeID *string        `db:"current_assignee_id" json:"current_assignee_id,omitempty"`
	WorkflowStatus    WorkflowStatus `db:"workflow_status" json:"workflow_status"`
	SLADeadline       *time.Time     `db:"sla_deadline" json:"sla_deadline,omitempty"`
	CreatedBy         string         `db:"created_by" json:"created_by"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// SLABreached reports whether the deadline has lapsed at the given instant.
// Breach is derived on read, never actively monitored.
func (w *FileWorkflow) SLABreached(now time.Time) bool {
	if w == nil || w.SLADeadline == nil {
		return false
	}
	return now.After(*w.SLADeadline)
}

// WorkflowFilter captures filtering criteria for listing workflows.
type WorkflowFilter struct {
	UserID       string
	Status       WorkflowStatus
	DepartmentID string
	Limit        int
	Offset       int
}

// WorkflowListItem is a workflow row enriched for listings.
type WorkflowListItem struct {
	FileWorkflow
	FileNumber   string  `db:"file_number" json:"file_number"`
	Subject      string  `db:"subject" json:"subject"`
	StageName    string  `db:"stage_name" json:"stage_name"`
	AssigneeName *string `db:"assignee_name" json:"assignee_name,omitempty"`
	SLABreach    bool    `db:"-" json:"sla_breached"`
}
