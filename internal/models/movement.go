package models

import "time"

// Movement and workflow action types recorded in the audit trail.
const (
	MovementActionAssigned = "ASSIGNED"
	MovementActionReturned = "RETURNED"

	WorkflowActionForward = "FORWARD"
	WorkflowActionStart   = "START"
)

// FileMovement is one immutable row of the assignment audit trail.
// Rows are append-only: never updated, never deleted.
type FileMovement struct {
	ID             string    `db:"id" json:"id"`
	FileID         string    `db:"file_id" json:"file_id"`
	FromUserID     *string   `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserID       string    `db:"to_user_id" json:"to_user_id"`
	FromDepartment *string   `db:"from_department" json:"from_department,omitempty"`
	ToDepartment   *string   `db:"to_department" json:"to_department,omitempty"`
	ActionType     string    `db:"action_type" json:"action_type"`
	Remarks        *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// WorkflowAction logs one stage transition with an SLA-breach snapshot taken
// at the moment the action was applied.
type WorkflowAction struct {
	ID          string    `db:"id" json:"id"`
	WorkflowID  string    `db:"workflow_id" json:"workflow_id"`
	FileID      string    `db:"file_id" json:"file_id"`
	ActorID     string    `db:"actor_id" json:"actor_id"`
	FromStageID *string   `db:"from_stage_id" json:"from_stage_id,omitempty"`
	ToStageID   string    `db:"to_stage_id" json:"to_stage_id"`
	ActionType  string    `db:"action_type" json:"action_type"`
	Payload     []byte    `db:"payload" json:"payload,omitempty"`
	SLABreached bool      `db:"sla_breached" json:"sla_breached"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FileSignature is a signature applied to a file. Inactive rows are
// superseded signatures and are excluded from the timeline.
type FileSignature struct {
	ID        string    `db:"id" json:"id"`
	FileID    string    `db:"file_id" json:"file_id"`
	SignedBy  string    `db:"signed_by" json:"signed_by"`
	ImagePath *string   `db:"image_path" json:"-"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	SignedAt  time.Time `db:"signed_at" json:"signed_at"`
}

// AuditLog records an administrative action for compliance review.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
