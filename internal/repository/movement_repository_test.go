package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMovementRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMovementRepositoryListByFileOldestFirst(t *testing.T) {
	db, mock, cleanup := newMovementRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "file_id", "from_user_id", "to_user_id", "from_department", "to_department", "action_type", "remarks", "created_at", "from_user_name", "to_user_name", "to_role_code"}).
		AddRow("m-1", "file-1", nil, "user-2", nil, nil, "ASSIGNED", nil, base, nil, "B. Engineer", "EEXEN").
		AddRow("m-2", "file-1", "user-2", "user-3", nil, nil, "ASSIGNED", "for approval", base.Add(time.Hour), "B. Engineer", "C. Director", "DIRECTOR")
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_file_movements m")).
		WithArgs("file-1").
		WillReturnRows(rows)

	movements, err := repo.ListByFile(context.Background(), "file-1")
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.Equal(t, "m-1", movements[0].ID)
	require.NotNil(t, movements[1].Remarks)
	require.Equal(t, "for approval", *movements[1].Remarks)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryMissingSignaturesTableTolerated(t *testing.T) {
	db, mock, cleanup := newMovementRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_file_signatures s")).
		WithArgs("file-1").
		WillReturnError(&pq.Error{Code: "42P01"})

	signatures, err := repo.ListSignaturesByFile(context.Background(), "file-1")
	require.NoError(t, err)
	require.Empty(t, signatures)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositorySignaturesOtherErrorsPropagate(t *testing.T) {
	db, mock, cleanup := newMovementRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_file_signatures s")).
		WithArgs("file-1").
		WillReturnError(&pq.Error{Code: "42501"})

	_, err := repo.ListSignaturesByFile(context.Background(), "file-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryParticipantIDs(t *testing.T) {
	db, mock, cleanup := newMovementRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	rows := sqlmock.NewRows([]string{"user_id"}).
		AddRow("user-1").
		AddRow("user-2").
		AddRow("user-3")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT user_id FROM")).
		WithArgs("file-1").
		WillReturnRows(rows)

	ids, err := repo.ParticipantIDs(context.Background(), "file-1")
	require.NoError(t, err)
	require.Equal(t, []string{"user-1", "user-2", "user-3"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
