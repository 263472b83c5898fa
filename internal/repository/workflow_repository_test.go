package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

func newWorkflowRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWorkflowRepositoryGetByFileID(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	deadline := time.Now().Add(24 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "file_id", "template_id", "current_stage_id", "current_assignee_id", "workflow_status", "sla_deadline", "created_by", "created_at", "updated_at"}).
		AddRow("wf-1", "file-1", "tpl-1", "stage-1", "user-1", "IN_PROGRESS", deadline, "creator-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_id, template_id, current_stage_id")).
		WithArgs("file-1").
		WillReturnRows(rows)

	workflow, err := repo.GetByFileID(context.Background(), "file-1")
	require.NoError(t, err)
	require.NotNil(t, workflow)
	require.Equal(t, "wf-1", workflow.ID)
	require.Equal(t, models.WorkflowStatusInProgress, workflow.WorkflowStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryGetByFileIDMissing(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, file_id, template_id, current_stage_id")).
		WithArgs("file-x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	workflow, err := repo.GetByFileID(context.Background(), "file-x")
	require.NoError(t, err)
	require.Nil(t, workflow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryListTransitionTargetsOrdered(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	rows := sqlmock.NewRows([]string{"transition_id", "stage_id", "stage_name", "stage_order", "role_group_id", "sla_hours"}).
		AddRow("t-1", "stage-2", "Review", 2, "rg-1", 48).
		AddRow("t-2", "stage-3", "Approved", 3, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY ws.stage_order ASC")).
		WithArgs("stage-1").
		WillReturnRows(rows)

	targets, err := repo.ListTransitionTargets(context.Background(), "stage-1")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	require.Equal(t, "stage-2", targets[0].StageID)
	require.NotNil(t, targets[0].SLAHours)
	require.Equal(t, 48, *targets[0].SLAHours)
	require.Nil(t, targets[1].RoleGroupID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_file_workflows")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	workflow := &models.FileWorkflow{
		FileID:         "file-1",
		TemplateID:     "tpl-1",
		CurrentStageID: "stage-1",
		CreatedBy:      "creator-1",
	}
	require.NoError(t, repo.Create(context.Background(), workflow))
	require.NotEmpty(t, workflow.ID)
	require.Equal(t, models.WorkflowStatusInProgress, workflow.WorkflowStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	rows := sqlmock.NewRows([]string{"id", "file_id", "template_id", "current_stage_id", "current_assignee_id", "workflow_status", "sla_deadline", "created_by", "created_at", "updated_at", "file_number", "subject", "stage_name", "assignee_name"}).
		AddRow("wf-1", "file-1", "tpl-1", "stage-1", "user-1", "IN_PROGRESS", nil, "creator-1", time.Now(), time.Now(), "KWSC/2026/000001", "Pipeline repair", "Review", "B. Engineer")
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_file_workflows fw")).
		WithArgs("user-1", "IN_PROGRESS").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.WorkflowFilter{
		UserID: "user-1",
		Status: models.WorkflowStatusInProgress,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "KWSC/2026/000001", items[0].FileNumber)
	require.Equal(t, "Review", items[0].StageName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func assignmentFixtureParams() AssignmentParams {
	from := "user-1"
	deadline := time.Now().Add(48 * time.Hour)
	remarks := "please review"
	return AssignmentParams{
		WorkflowID:   "wf-1",
		FileID:       "file-1",
		ActorID:      "user-1",
		TargetUserID: "user-2",
		FromUserID:   &from,
		FromStageID:  "stage-1",
		ToStageID:    "stage-2",
		SLADeadline:  &deadline,
		Remarks:      &remarks,
	}
}

func TestApplyAssignmentCommitsAllRows(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	params := assignmentFixtureParams()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_stage_id FROM efiling_file_workflows WHERE id = $1 FOR UPDATE")).
		WithArgs("wf-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_stage_id"}).AddRow("stage-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE efiling_files")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE efiling_file_workflows")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_file_movements")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_workflow_actions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyAssignment(context.Background(), params))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAssignmentRollsBackOnStaleStage(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	params := assignmentFixtureParams()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_stage_id FROM efiling_file_workflows WHERE id = $1 FOR UPDATE")).
		WithArgs("wf-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_stage_id"}).AddRow("stage-9"))
	mock.ExpectRollback()

	err := repo.ApplyAssignment(context.Background(), params)
	require.ErrorIs(t, err, ErrStageChanged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAssignmentRejectsStaleExpectedStage(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	params := assignmentFixtureParams()
	expected := "stage-0"
	params.ExpectedStageID = &expected

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_stage_id FROM efiling_file_workflows WHERE id = $1 FOR UPDATE")).
		WithArgs("wf-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_stage_id"}).AddRow("stage-1"))
	mock.ExpectRollback()

	err := repo.ApplyAssignment(context.Background(), params)
	require.ErrorIs(t, err, ErrStageChanged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAssignmentRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	params := assignmentFixtureParams()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT current_stage_id FROM efiling_file_workflows WHERE id = $1 FOR UPDATE")).
		WithArgs("wf-1").
		WillReturnRows(sqlmock.NewRows([]string{"current_stage_id"}).AddRow("stage-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE efiling_files")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE efiling_file_workflows")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_file_movements")).
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	err := repo.ApplyAssignment(context.Background(), params)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
