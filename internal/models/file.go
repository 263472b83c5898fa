package models

import "time"

// FileStatus tracks the routing state of a file.
type FileStatus string

const (
	FileStatusDraft      FileStatus = "DRAFT"
	FileStatusInProgress FileStatus = "IN_PROGRESS"
	FileStatusCompleted  FileStatus = "COMPLETED"
	FileStatusCancelled  FileStatus = "CANCELLED"
)

// File is a unit of work routed through a workflow. Files are never
// hard-deleted once sent; cancellation is a status change.
type File struct {
	ID           string     `db:"id" json:"id"`
	FileNumber   string     `db:"file_number" json:"file_number"`
	Subject      string     `db:"subject" json:"subject"`
	Status       FileStatus `db:"status" json:"status"`
	AssignedTo   *string    `db:"assigned_to" json:"assigned_to,omitempty"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	SLADeadline  *time.Time `db:"sla_deadline" json:"sla_deadline,omitempty"`
	SLABreached  bool       `db:"sla_breached" json:"sla_breached"`
	CreatedBy    string     `db:"created_by" json:"created_by"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FileFilter captures filtering criteria for listing files.
type FileFilter struct {
	Status       FileStatus
	AssignedTo   string
	CreatedBy    string
	DepartmentID string
	Search       string
	Limit        int
	Offset       int
}

// FileAttachment is an uploaded document stored on the local filesystem.
type FileAttachment struct {
	ID          string    `db:"id" json:"id"`
	FileID      string    `db:"file_id" json:"file_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	StoragePath string    `db:"storage_path" json:"-"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	UploadedBy  string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
