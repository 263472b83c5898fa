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

// RoleGroupRepository persists role groups.
type RoleGroupRepository struct {
	db *sqlx.DB
}

// NewRoleGroupRepository constructs the repository.
func NewRoleGroupRepository(db *sqlx.DB) *RoleGroupRepository {
	return &RoleGroupRepository{db: db}
}

// GetByID fetches a role group.
func (r *RoleGroupRepository) GetByID(ctx context.Context, id string) (*models.RoleGroup, error) {
	const query = `SELECT id, name, description, role_codes, department_id, zone_id, district_id, town_id, is_active, created_at, updated_at
	FROM efiling_role_groups WHERE id = $1`
	var group models.RoleGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get role group: %w", err)
	}
	return &group, nil
}

// RoleGroupScope restricts listings to the caller's geography. A nil scope
// (privileged caller) returns every active group.
type RoleGroupScope struct {
	DepartmentID *string
	ZoneID       *string
	DistrictID   *string
	TownID       *string
}

// List returns active role groups, geography-filtered when a scope is given.
// Groups without a location set are visible to everyone.
func (r *RoleGroupRepository) List(ctx context.Context, scope *RoleGroupScope) ([]models.RoleGroup, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT id, name, description, role_codes, department_id, zone_id, district_id, town_id, is_active, created_at, updated_at
	FROM efiling_role_groups WHERE is_active = true`)

	if scope != nil {
		appendScope := func(column string, value *string) {
			if value == nil || *value == "" {
				builder.WriteString(fmt.Sprintf(" AND %s IS NULL", column))
				return
			}
			args = append(args, *value)
			builder.WriteString(fmt.Sprintf(" AND (%s IS NULL OR %s = $%d)", column, column, len(args)))
		}
		appendScope("department_id", scope.DepartmentID)
		appendScope("zone_id", scope.ZoneID)
		appendScope("district_id", scope.DistrictID)
		appendScope("town_id", scope.TownID)
	}
	builder.WriteString(" ORDER BY name ASC")

	var groups []models.RoleGroup
	if err := r.db.SelectContext(ctx, &groups, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list role groups: %w", err)
	}
	return groups, nil
}

// Create inserts a new role group.
func (r *RoleGroupRepository) Create(ctx context.Context, group *models.RoleGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	group.IsActive = true
	const query = `INSERT INTO efiling_role_groups
	(id, name, description, role_codes, department_id, zone_id, district_id, town_id, is_active, created_at, updated_at)
	VALUES (:id, :name, :description, :role_codes, :department_id, :zone_id, :district_id, :town_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create role group: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a role group.
func (r *RoleGroupRepository) Update(ctx context.Context, group *models.RoleGroup) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE efiling_role_groups
	SET name = :name, description = :description, role_codes = :role_codes, is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, group)
	if err != nil {
		return fmt.Errorf("update role group: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check role group update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
