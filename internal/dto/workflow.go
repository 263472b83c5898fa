package dto

import "github.com/kwsc-digital/efiling-api/internal/models"

// CreateWorkflowRequest payload for initializing a file workflow.
type CreateWorkflowRequest struct {
	FileID            string  `json:"fileId" binding:"required"`
	TemplateID        string  `json:"templateId" binding:"required"`
	CurrentAssigneeID *string `json:"currentAssigneeId"`
}

// WorkflowQuery mirrors supported workflow listing filters.
type WorkflowQuery struct {
	UserID       string
	Status       models.WorkflowStatus
	DepartmentID string
	Page         int
	Limit        int
}

// CreateRoleGroupRequest payload for defining a role group.
type CreateRoleGroupRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  *string  `json:"description"`
	RoleCodes    []string `json:"role_codes" binding:"required,min=1,dive,rolecode"`
	DepartmentID *string  `json:"departmentId"`
	ZoneID       *string  `json:"zoneId"`
	DistrictID   *string  `json:"districtId"`
	TownID       *string  `json:"townId"`
}

// UpdateRoleGroupRequest payload for editing a role group.
type UpdateRoleGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	RoleCodes   []string `json:"role_codes" binding:"required,min=1,dive,rolecode"`
	IsActive    *bool    `json:"is_active"`
}
