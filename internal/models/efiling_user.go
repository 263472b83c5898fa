package models

import "time"

// Privileged e-filing role IDs that bypass geographic scoping.
const (
	EfilingRoleIDSuperAdmin = 1
	EfilingRoleIDAdmin      = 2
)

// RoleCodeGlobal marks a role whose holders see every location.
const RoleCodeGlobal = "GLOBAL"

// EfilingUser holds the e-filing identity of an application user.
// Owned by the identity subsystem; the workflow engine reads it only.
type EfilingUser struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	EfilingRoleID   int       `db:"efiling_role_id" json:"efiling_role_id"`
	RoleCode        string    `db:"role_code" json:"role_code"`
	Designation     *string   `db:"designation" json:"designation,omitempty"`
	DepartmentID    *string   `db:"department_id" json:"department_id,omitempty"`
	DepartmentName  *string   `db:"department_name" json:"department_name,omitempty"`
	ZoneID          *string   `db:"zone_id" json:"zone_id,omitempty"`
	DistrictID      *string   `db:"district_id" json:"district_id,omitempty"`
	TownID          *string   `db:"town_id" json:"town_id,omitempty"`
	DivisionID      *string   `db:"division_id" json:"division_id,omitempty"`
	CanSign         bool      `db:"can_sign" json:"can_sign"`
	CanApproveFiles bool      `db:"can_approve_files" json:"can_approve_files"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// IdentityScope is the resolved role and geography for an actor.
// An empty scope (zero value pointer fields) means most restrictive access.
type IdentityScope struct {
	UserID        string
	EfilingUserID string
	EfilingRoleID int
	RoleCode      string
	DepartmentID  *string
	ZoneID        *string
	DistrictID    *string
	TownID        *string
	DivisionID    *string
}

// Privileged reports whether the scope bypasses geographic filtering.
func (s *IdentityScope) Privileged() bool {
	if s == nil {
		return false
	}
	if s.EfilingRoleID == EfilingRoleIDSuperAdmin || s.EfilingRoleID == EfilingRoleIDAdmin {
		return true
	}
	return s.RoleCode == RoleCodeGlobal
}
