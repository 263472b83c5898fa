package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	"github.com/kwsc-digital/efiling-api/internal/repository"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type mockRoleGroupAdminStore struct {
	groups     map[string]*models.RoleGroup
	lastScope  *repository.RoleGroupScope
	listResult []models.RoleGroup
}

func (m *mockRoleGroupAdminStore) GetByID(ctx context.Context, id string) (*models.RoleGroup, error) {
	if g, ok := m.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (m *mockRoleGroupAdminStore) List(ctx context.Context, scope *repository.RoleGroupScope) ([]models.RoleGroup, error) {
	m.lastScope = scope
	return m.listResult, nil
}

func (m *mockRoleGroupAdminStore) Create(ctx context.Context, group *models.RoleGroup) error {
	group.ID = "rg-created"
	if m.groups == nil {
		m.groups = map[string]*models.RoleGroup{}
	}
	cp := *group
	m.groups[group.ID] = &cp
	return nil
}

func (m *mockRoleGroupAdminStore) Update(ctx context.Context, group *models.RoleGroup) error {
	cp := *group
	m.groups[group.ID] = &cp
	return nil
}

type mockRoleGroupCache struct {
	gets    int
	sets    int
	deletes int
}

func (m *mockRoleGroupCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	return repository.ErrCacheMiss
}

func (m *mockRoleGroupCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	return nil
}

func (m *mockRoleGroupCache) Delete(ctx context.Context, keys ...string) error {
	m.deletes += len(keys)
	return nil
}

func TestListRoleGroupsPrivilegedUnscoped(t *testing.T) {
	repo := &mockRoleGroupAdminStore{listResult: []models.RoleGroup{{ID: "rg-1"}}}
	users := &mockEfilingUserStore{users: map[string]*models.EfilingUser{
		"admin-1": {ID: "ef-1", UserID: "admin-1", EfilingRoleID: models.EfilingRoleIDAdmin, RoleCode: "ADMIN", IsActive: true},
	}}
	cache := &mockRoleGroupCache{}
	svc := NewRoleGroupService(repo, NewIdentityService(users, nil), cache, time.Minute, nil)

	groups, err := svc.List(context.Background(), "admin-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Nil(t, repo.lastScope)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestListRoleGroupsScopedToGeography(t *testing.T) {
	repo := &mockRoleGroupAdminStore{}
	users := &mockEfilingUserStore{users: map[string]*models.EfilingUser{
		"user-1": {ID: "ef-1", UserID: "user-1", EfilingRoleID: 5, RoleCode: "EEXEN", ZoneID: strPtr("zone-1"), IsActive: true},
	}}
	svc := NewRoleGroupService(repo, NewIdentityService(users, nil), nil, time.Minute, nil)

	_, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, repo.lastScope)
	require.NotNil(t, repo.lastScope.ZoneID)
	assert.Equal(t, "zone-1", *repo.lastScope.ZoneID)
}

func TestListRoleGroupsUnknownCallerMostRestrictive(t *testing.T) {
	repo := &mockRoleGroupAdminStore{}
	svc := NewRoleGroupService(repo, NewIdentityService(&mockEfilingUserStore{}, nil), nil, time.Minute, nil)

	_, err := svc.List(context.Background(), "stranger")
	require.NoError(t, err)
	require.NotNil(t, repo.lastScope)
	assert.Nil(t, repo.lastScope.DepartmentID)
}

func TestCreateRoleGroupNormalizesCodes(t *testing.T) {
	repo := &mockRoleGroupAdminStore{}
	cache := &mockRoleGroupCache{}
	svc := NewRoleGroupService(repo, NewIdentityService(&mockEfilingUserStore{}, nil), cache, time.Minute, nil)

	group, err := svc.Create(context.Background(), dto.CreateRoleGroupRequest{
		Name:      " Engineers ",
		RoleCodes: []string{" ee* ", "EE*", "eexen", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Engineers", group.Name)
	assert.Equal(t, models.StringList{"EE*", "EEXEN"}, group.RoleCodes)
	assert.Equal(t, 1, cache.deletes)
}

func TestCreateRoleGroupRequiresCodes(t *testing.T) {
	svc := NewRoleGroupService(&mockRoleGroupAdminStore{}, NewIdentityService(&mockEfilingUserStore{}, nil), nil, time.Minute, nil)

	_, err := svc.Create(context.Background(), dto.CreateRoleGroupRequest{Name: "Empty", RoleCodes: []string{" ", ""}})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateRoleGroupNotFound(t *testing.T) {
	svc := NewRoleGroupService(&mockRoleGroupAdminStore{}, NewIdentityService(&mockEfilingUserStore{}, nil), nil, time.Minute, nil)

	_, err := svc.Update(context.Background(), "missing", dto.UpdateRoleGroupRequest{Name: "X", RoleCodes: []string{"EE"}})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUpdateRoleGroupTogglesActive(t *testing.T) {
	inactive := false
	repo := &mockRoleGroupAdminStore{groups: map[string]*models.RoleGroup{
		"rg-1": {ID: "rg-1", Name: "Old", RoleCodes: models.StringList{"EE"}, IsActive: true},
	}}
	cache := &mockRoleGroupCache{}
	svc := NewRoleGroupService(repo, NewIdentityService(&mockEfilingUserStore{}, nil), cache, time.Minute, nil)

	group, err := svc.Update(context.Background(), "rg-1", dto.UpdateRoleGroupRequest{
		Name:      "New",
		RoleCodes: []string{"dir*"},
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", group.Name)
	assert.Equal(t, models.StringList{"DIR*"}, group.RoleCodes)
	assert.False(t, group.IsActive)
	assert.Equal(t, 1, cache.deletes)
}
