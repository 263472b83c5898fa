package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

func newFileRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFileRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newFileRepoMock(t)
	defer cleanup()

	repo := NewFileRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_files")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	file := &models.File{FileNumber: "KWSC/2026/000001", Subject: "Pipeline repair", CreatedBy: "user-1"}
	require.NoError(t, repo.Create(context.Background(), file))
	require.NotEmpty(t, file.ID)
	require.Equal(t, models.FileStatusDraft, file.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryGetByIDMissing(t *testing.T) {
	db, mock, cleanup := newFileRepoMock(t)
	defer cleanup()

	repo := NewFileRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_files WHERE id = $1")).
		WithArgs("file-x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	file, err := repo.GetByID(context.Background(), "file-x")
	require.NoError(t, err)
	require.Nil(t, file)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newFileRepoMock(t)
	defer cleanup()

	repo := NewFileRepository(db)
	rows := sqlmock.NewRows([]string{"id", "file_number", "subject", "status", "assigned_to", "department_id", "sla_deadline", "sla_breached", "created_by", "created_at", "updated_at"}).
		AddRow("file-1", "KWSC/2026/000001", "Pipeline repair", "IN_PROGRESS", "user-2", nil, nil, false, "user-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("file_number ILIKE")).
		WithArgs("IN_PROGRESS", "%pipeline%").
		WillReturnRows(rows)

	files, err := repo.List(context.Background(), models.FileFilter{
		Status: models.FileStatusInProgress,
		Search: "pipeline",
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "KWSC/2026/000001", files[0].FileNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryNextFileNumber(t *testing.T) {
	db, mock, cleanup := newFileRepoMock(t)
	defer cleanup()

	repo := NewFileRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('efiling_file_number_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(42)))

	number, err := repo.NextFileNumber(context.Background(), "KWSC")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("KWSC/%d/000042", time.Now().UTC().Year()), number)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileRepositoryAttachmentRoundTrip(t *testing.T) {
	db, mock, cleanup := newFileRepoMock(t)
	defer cleanup()

	repo := NewFileRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_file_attachments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	attachment := &models.FileAttachment{
		FileID:      "file-1",
		FileName:    "estimate.pdf",
		StoragePath: "files/file-1/estimate.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		UploadedBy:  "user-1",
	}
	require.NoError(t, repo.CreateAttachment(context.Background(), attachment))
	require.NotEmpty(t, attachment.ID)

	rows := sqlmock.NewRows([]string{"id", "file_id", "file_name", "storage_path", "content_type", "size_bytes", "uploaded_by", "created_at"}).
		AddRow(attachment.ID, "file-1", "estimate.pdf", "files/file-1/estimate.pdf", "application/pdf", 2048, "user-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_file_attachments WHERE id = $1 AND file_id = $2")).
		WithArgs(attachment.ID, "file-1").
		WillReturnRows(rows)

	found, err := repo.GetAttachment(context.Background(), "file-1", attachment.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "estimate.pdf", found.FileName)
	require.NoError(t, mock.ExpectationsWereMet())
}
