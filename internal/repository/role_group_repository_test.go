package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

func newRoleGroupRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func roleGroupColumns() []string {
	return []string{"id", "name", "description", "role_codes", "department_id", "zone_id", "district_id", "town_id", "is_active", "created_at", "updated_at"}
}

func TestRoleGroupRepositoryGetByIDScansJSONArray(t *testing.T) {
	db, mock, cleanup := newRoleGroupRepoMock(t)
	defer cleanup()

	repo := NewRoleGroupRepository(db)
	rows := sqlmock.NewRows(roleGroupColumns()).
		AddRow("rg-1", "Engineers", nil, []byte(`["EE*","XEN"]`), nil, nil, nil, nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_role_groups WHERE id = $1")).
		WithArgs("rg-1").
		WillReturnRows(rows)

	group, err := repo.GetByID(context.Background(), "rg-1")
	require.NoError(t, err)
	require.NotNil(t, group)
	require.Equal(t, models.StringList{"EE*", "XEN"}, group.RoleCodes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGroupRepositoryGetByIDMissing(t *testing.T) {
	db, mock, cleanup := newRoleGroupRepoMock(t)
	defer cleanup()

	repo := NewRoleGroupRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM efiling_role_groups WHERE id = $1")).
		WithArgs("rg-x").
		WillReturnRows(sqlmock.NewRows(roleGroupColumns()))

	group, err := repo.GetByID(context.Background(), "rg-x")
	require.NoError(t, err)
	require.Nil(t, group)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGroupRepositoryListUnscoped(t *testing.T) {
	db, mock, cleanup := newRoleGroupRepoMock(t)
	defer cleanup()

	repo := NewRoleGroupRepository(db)
	rows := sqlmock.NewRows(roleGroupColumns()).
		AddRow("rg-1", "Clerks", nil, []byte(`["CLRK"]`), nil, nil, nil, nil, true, time.Now(), time.Now()).
		AddRow("rg-2", "Engineers", nil, []byte(`["EE*"]`), nil, nil, nil, nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = true")).
		WillReturnRows(rows)

	groups, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGroupRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newRoleGroupRepoMock(t)
	defer cleanup()

	repo := NewRoleGroupRepository(db)
	zone := "zone-1"
	rows := sqlmock.NewRows(roleGroupColumns()).
		AddRow("rg-1", "Zonal clerks", nil, []byte(`["CLRK"]`), nil, zone, nil, nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("zone_id IS NULL OR zone_id =")).
		WithArgs(zone).
		WillReturnRows(rows)

	groups, err := repo.List(context.Background(), &RoleGroupScope{ZoneID: &zone})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGroupRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRoleGroupRepoMock(t)
	defer cleanup()

	repo := NewRoleGroupRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO efiling_role_groups")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	group := &models.RoleGroup{Name: "Directors", RoleCodes: models.StringList{"DIRECTOR"}}
	require.NoError(t, repo.Create(context.Background(), group))
	require.NotEmpty(t, group.ID)
	require.True(t, group.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleGroupRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRoleGroupRepoMock(t)
	defer cleanup()

	repo := NewRoleGroupRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE efiling_role_groups")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.RoleGroup{ID: "rg-x", Name: "X", RoleCodes: models.StringList{"EE"}})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
