package dto

import (
	"time"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

// CreateFileRequest payload for registering a new file.
type CreateFileRequest struct {
	Subject      string  `json:"subject" binding:"required"`
	DepartmentID *string `json:"departmentId"`
}

// AssignFileRequest payload for forwarding a file to the next user.
// ExpectedStageID, when set, must match the workflow's current stage at
// commit time; a stale value is rejected with a conflict.
type AssignFileRequest struct {
	ToUserID        string  `json:"to_user_id" binding:"required"`
	Remarks         *string `json:"remarks"`
	ExpectedStageID *string `json:"expected_stage_id"`
}

// AssignFileResult reports the outcome of an assignment.
type AssignFileResult struct {
	FileID      string     `json:"file_id"`
	ToUserID    string     `json:"to_user_id"`
	StageID     string     `json:"stage_id"`
	StageName   string     `json:"stage_name"`
	SLADeadline *time.Time `json:"sla_deadline,omitempty"`
}

// FileQuery mirrors supported file listing filters.
type FileQuery struct {
	Status     models.FileStatus
	AssignedTo string
	Search     string
	Page       int
	Limit      int
}

// AttachmentResponse describes an uploaded attachment with its download token.
type AttachmentResponse struct {
	Attachment  *models.FileAttachment `json:"attachment"`
	DownloadURL string                 `json:"download_url"`
	ExpiresAt   time.Time              `json:"expires_at"`
}
