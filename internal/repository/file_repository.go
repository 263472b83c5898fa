package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

// FileRepository persists file records.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository constructs the repository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a new file row.
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.Status == "" {
		file.Status = models.FileStatusDraft
	}
	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now
	const query = `INSERT INTO efiling_files
	(id, file_number, subject, status, assigned_to, department_id, sla_deadline, sla_breached, created_by, created_at, updated_at)
	VALUES (:id, :file_number, :subject, :status, :assigned_to, :department_id, :sla_deadline, :sla_breached, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, file); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// GetByID fetches a file by identifier.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	const query = `SELECT id, file_number, subject, status, assigned_to, department_id, sla_deadline, sla_breached, created_by, created_at, updated_at
	FROM efiling_files WHERE id = $1`
	var file models.File
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &file, nil
}

// List returns files matching the filter (latest first).
func (r *FileRepository) List(ctx context.Context, filter models.FileFilter) ([]models.File, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 5)
	builder.WriteString(`SELECT id, file_number, subject, status, assigned_to, department_id, sla_deadline, sla_breached, created_by, created_at, updated_at
	FROM efiling_files`)

	conditions := make([]string, 0, 5)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(file_number ILIKE $%d OR subject ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var files []models.File
	if err := r.db.SelectContext(ctx, &files, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// NextFileNumber allocates a sequential file number with the given prefix.
func (r *FileRepository) NextFileNumber(ctx context.Context, prefix string) (string, error) {
	const query = `SELECT nextval('efiling_file_number_seq')`
	var seq int64
	if err := r.db.GetContext(ctx, &seq, query); err != nil {
		return "", fmt.Errorf("allocate file number: %w", err)
	}
	year := time.Now().UTC().Year()
	return fmt.Sprintf("%s/%d/%06d", prefix, year, seq), nil
}

// CreateAttachment inserts a file attachment row.
func (r *FileRepository) CreateAttachment(ctx context.Context, attachment *models.FileAttachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO efiling_file_attachments
	(id, file_id, file_name, storage_path, content_type, size_bytes, uploaded_by, created_at)
	VALUES (:id, :file_id, :file_name, :storage_path, :content_type, :size_bytes, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// GetAttachment fetches an attachment scoped to its file.
func (r *FileRepository) GetAttachment(ctx context.Context, fileID, attachmentID string) (*models.FileAttachment, error) {
	const query = `SELECT id, file_id, file_name, storage_path, content_type, size_bytes, uploaded_by, created_at
	FROM efiling_file_attachments WHERE id = $1 AND file_id = $2`
	var attachment models.FileAttachment
	if err := r.db.GetContext(ctx, &attachment, query, attachmentID, fileID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return &attachment, nil
}
