package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	"github.com/kwsc-digital/efiling-api/internal/repository"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type roleGroupAdminStore interface {
	GetByID(ctx context.Context, id string) (*models.RoleGroup, error)
	List(ctx context.Context, scope *repository.RoleGroupScope) ([]models.RoleGroup, error)
	Create(ctx context.Context, group *models.RoleGroup) error
	Update(ctx context.Context, group *models.RoleGroup) error
}

type roleGroupCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const roleGroupCacheKeyAll = "rolegroups:all"

// RoleGroupService manages role groups and scopes listings to the caller's
// geography unless the caller is privileged.
type RoleGroupService struct {
	repo     roleGroupAdminStore
	identity *IdentityService
	cache    roleGroupCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewRoleGroupService constructs the service. cache may be nil.
func NewRoleGroupService(repo roleGroupAdminStore, identity *IdentityService, cache roleGroupCache, cacheTTL time.Duration, logger *zap.Logger) *RoleGroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &RoleGroupService{repo: repo, identity: identity, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// List returns role groups visible to the caller. Privileged callers (admin
// role IDs or a global role code) see everything; everyone else sees groups
// matching their geography. The unscoped listing is served from cache.
func (s *RoleGroupService) List(ctx context.Context, callerUserID string) ([]models.RoleGroup, error) {
	scope, err := s.identity.Resolve(ctx, callerUserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve caller identity")
	}

	if scope != nil && scope.Privileged() {
		if s.cache != nil {
			var cached []models.RoleGroup
			if err := s.cache.Get(ctx, roleGroupCacheKeyAll, &cached); err == nil {
				return cached, nil
			} else if !errors.Is(err, repository.ErrCacheMiss) {
				s.logger.Warn("role group cache read failed", zap.Error(err))
			}
		}
		groups, err := s.repo.List(ctx, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role groups")
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, roleGroupCacheKeyAll, groups, s.cacheTTL); err != nil {
				s.logger.Warn("role group cache write failed", zap.Error(err))
			}
		}
		return groups, nil
	}

	// Unresolvable callers get the most restrictive scope, not an error.
	repoScope := &repository.RoleGroupScope{}
	if scope != nil {
		repoScope.DepartmentID = scope.DepartmentID
		repoScope.ZoneID = scope.ZoneID
		repoScope.DistrictID = scope.DistrictID
		repoScope.TownID = scope.TownID
	}
	groups, err := s.repo.List(ctx, repoScope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role groups")
	}
	return groups, nil
}

// Create defines a new role group with normalized role codes.
func (s *RoleGroupService) Create(ctx context.Context, req dto.CreateRoleGroupRequest) (*models.RoleGroup, error) {
	codes, err := normalizeRoleCodes(req.RoleCodes)
	if err != nil {
		return nil, err
	}
	group := &models.RoleGroup{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		RoleCodes:    codes,
		DepartmentID: req.DepartmentID,
		ZoneID:       req.ZoneID,
		DistrictID:   req.DistrictID,
		TownID:       req.TownID,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role group")
	}
	s.invalidate(ctx)
	return group, nil
}

// Update rewrites a role group's name, description, codes and active flag.
func (s *RoleGroupService) Update(ctx context.Context, id string, req dto.UpdateRoleGroupRequest) (*models.RoleGroup, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role group")
	}
	if group == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "role group not found")
	}
	codes, err := normalizeRoleCodes(req.RoleCodes)
	if err != nil {
		return nil, err
	}
	group.Name = strings.TrimSpace(req.Name)
	group.Description = req.Description
	group.RoleCodes = codes
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, group); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role group")
	}
	s.invalidate(ctx)
	return group, nil
}

func (s *RoleGroupService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, roleGroupCacheKeyAll); err != nil {
		s.logger.Warn("role group cache invalidation failed", zap.Error(err))
	}
}

// normalizeRoleCodes trims, uppercases and deduplicates the pattern list so
// the stored representation is always a clean JSON array.
func normalizeRoleCodes(raw []string) (models.StringList, error) {
	seen := make(map[string]struct{}, len(raw))
	codes := make(models.StringList, 0, len(raw))
	for _, code := range raw {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one role code is required")
	}
	return codes, nil
}
