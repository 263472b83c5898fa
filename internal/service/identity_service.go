package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

type efilingUserStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.EfilingUser, error)
}

// IdentityService resolves an actor's e-filing role and geographic scope.
// Resolution is read-only; a user who is not an e-filing participant
// resolves to a nil scope, which downstream components treat as the most
// restrictive access, never as an error.
type IdentityService struct {
	repo   efilingUserStore
	logger *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(repo efilingUserStore, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{repo: repo, logger: logger}
}

// Resolve returns the identity scope for a user, or nil when the user has no
// active e-filing account.
func (s *IdentityService) Resolve(ctx context.Context, userID string) (*models.IdentityScope, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return &models.IdentityScope{
		UserID:        user.UserID,
		EfilingUserID: user.ID,
		EfilingRoleID: user.EfilingRoleID,
		RoleCode:      user.RoleCode,
		DepartmentID:  user.DepartmentID,
		ZoneID:        user.ZoneID,
		DistrictID:    user.DistrictID,
		TownID:        user.TownID,
		DivisionID:    user.DivisionID,
	}, nil
}
