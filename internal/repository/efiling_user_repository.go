package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

// EfilingUserRepository reads e-filing identities. The table is owned by the
// identity subsystem; this repository never writes it.
type EfilingUserRepository struct {
	db *sqlx.DB
}

// NewEfilingUserRepository constructs the repository.
func NewEfilingUserRepository(db *sqlx.DB) *EfilingUserRepository {
	return &EfilingUserRepository{db: db}
}

// GetByUserID fetches the e-filing identity for an application user.
// Returns nil without error when the user is not an e-filing participant.
func (r *EfilingUserRepository) GetByUserID(ctx context.Context, userID string) (*models.EfilingUser, error) {
	const query = `SELECT eu.id, eu.user_id, eu.efiling_role_id, eu.role_code, eu.designation,
       eu.department_id, d.name AS department_name, eu.zone_id, eu.district_id, eu.town_id, eu.division_id,
       eu.can_sign, eu.can_approve_files, eu.is_active, eu.created_at, eu.updated_at
	FROM efiling_users eu
	LEFT JOIN departments d ON d.id = eu.department_id
	WHERE eu.user_id = $1`
	var user models.EfilingUser
	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get efiling user: %w", err)
	}
	return &user, nil
}

// DisplayName resolves the full name shown for a user on timelines.
func (r *EfilingUserRepository) DisplayName(ctx context.Context, userID string) (string, error) {
	const query = `SELECT full_name FROM users WHERE id = $1`
	var name string
	if err := r.db.GetContext(ctx, &name, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("resolve display name: %w", err)
	}
	return name, nil
}
