package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

// MovementRepository reads the append-only movement and signature history.
// Movement rows are only ever written inside the assignment transaction.
type MovementRepository struct {
	db *sqlx.DB
}

// NewMovementRepository constructs the repository.
func NewMovementRepository(db *sqlx.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// MovementRow is a movement joined with resolved display labels.
type MovementRow struct {
	models.FileMovement
	FromUserName *string `db:"from_user_name"`
	ToUserName   *string `db:"to_user_name"`
	ToRoleCode   *string `db:"to_role_code"`
}

// ListByFile returns a file's movements oldest first.
func (r *MovementRepository) ListByFile(ctx context.Context, fileID string) ([]MovementRow, error) {
	const query = `SELECT m.id, m.file_id, m.from_user_id, m.to_user_id, m.from_department, m.to_department,
       m.action_type, m.remarks, m.created_at,
       fu.full_name AS from_user_name, tu.full_name AS to_user_name, eu.role_code AS to_role_code
	FROM efiling_file_movements m
	LEFT JOIN users fu ON fu.id = m.from_user_id
	LEFT JOIN users tu ON tu.id = m.to_user_id
	LEFT JOIN efiling_users eu ON eu.user_id = m.to_user_id
	WHERE m.file_id = $1
	ORDER BY m.created_at ASC`
	var movements []MovementRow
	if err := r.db.SelectContext(ctx, &movements, query, fileID); err != nil {
		return nil, fmt.Errorf("list file movements: %w", err)
	}
	return movements, nil
}

// SignatureRow is a signature joined with the signer's display labels.
type SignatureRow struct {
	models.FileSignature
	SignerName  *string `db:"signer_name"`
	Designation *string `db:"designation"`
}

// ListSignaturesByFile returns a file's active signatures oldest first.
// Deployments without the signatures table get an empty list, not an error.
func (r *MovementRepository) ListSignaturesByFile(ctx context.Context, fileID string) ([]SignatureRow, error) {
	const query = `SELECT s.id, s.file_id, s.signed_by, s.image_path, s.is_active, s.signed_at,
       u.full_name AS signer_name, eu.designation
	FROM efiling_file_signatures s
	LEFT JOIN users u ON u.id = s.signed_by
	LEFT JOIN efiling_users eu ON eu.user_id = s.signed_by
	WHERE s.file_id = $1 AND s.is_active = true
	ORDER BY s.signed_at ASC`
	var signatures []SignatureRow
	if err := r.db.SelectContext(ctx, &signatures, query, fileID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "42P01" { // undefined_table
			return nil, nil
		}
		return nil, fmt.Errorf("list file signatures: %w", err)
	}
	return signatures, nil
}

// ParticipantIDs returns every user that has handled the file: all movement
// endpoints, distinct. Used to fan out notifications.
func (r *MovementRepository) ParticipantIDs(ctx context.Context, fileID string) ([]string, error) {
	const query = `SELECT DISTINCT user_id FROM (
		SELECT from_user_id AS user_id FROM efiling_file_movements WHERE file_id = $1 AND from_user_id IS NOT NULL
		UNION
		SELECT to_user_id AS user_id FROM efiling_file_movements WHERE file_id = $1
	) participants`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, fileID); err != nil {
		return nil, fmt.Errorf("list file participants: %w", err)
	}
	return ids, nil
}
