package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwsc-digital/efiling-api/internal/models"
)

func TestResolveReturnsScope(t *testing.T) {
	users := &mockEfilingUserStore{users: map[string]*models.EfilingUser{
		"user-1": {ID: "ef-1", UserID: "user-1", EfilingRoleID: 5, RoleCode: "EEXEN", DepartmentID: strPtr("dept-1"), IsActive: true},
	}}
	svc := NewIdentityService(users, nil)

	scope, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, scope)
	assert.Equal(t, "EEXEN", scope.RoleCode)
	assert.Equal(t, "ef-1", scope.EfilingUserID)
	require.NotNil(t, scope.DepartmentID)
	assert.Equal(t, "dept-1", *scope.DepartmentID)
	assert.False(t, scope.Privileged())
}

func TestResolveMissingUserIsNotAnError(t *testing.T) {
	svc := NewIdentityService(&mockEfilingUserStore{}, nil)

	scope, err := svc.Resolve(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Nil(t, scope)
}

func TestResolveInactiveUserIsNil(t *testing.T) {
	users := &mockEfilingUserStore{users: map[string]*models.EfilingUser{
		"user-1": {ID: "ef-1", UserID: "user-1", RoleCode: "EEXEN", IsActive: false},
	}}
	svc := NewIdentityService(users, nil)

	scope, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, scope)
}

func TestResolveEmptyUserID(t *testing.T) {
	svc := NewIdentityService(&mockEfilingUserStore{}, nil)

	scope, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, scope)
}

func TestScopePrivileged(t *testing.T) {
	assert.True(t, (&models.IdentityScope{EfilingRoleID: models.EfilingRoleIDSuperAdmin}).Privileged())
	assert.True(t, (&models.IdentityScope{EfilingRoleID: models.EfilingRoleIDAdmin}).Privileged())
	assert.True(t, (&models.IdentityScope{EfilingRoleID: 9, RoleCode: models.RoleCodeGlobal}).Privileged())
	assert.False(t, (&models.IdentityScope{EfilingRoleID: 9, RoleCode: "EEXEN"}).Privileged())
	var nilScope *models.IdentityScope
	assert.False(t, nilScope.Privileged())
}
