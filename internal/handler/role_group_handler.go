package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
	"github.com/kwsc-digital/efiling-api/pkg/response"
)

type roleGroupService interface {
	List(ctx context.Context, callerUserID string) ([]models.RoleGroup, error)
	Create(ctx context.Context, req dto.CreateRoleGroupRequest) (*models.RoleGroup, error)
	Update(ctx context.Context, id string, req dto.UpdateRoleGroupRequest) (*models.RoleGroup, error)
}

// RoleGroupHandler exposes role group administration endpoints.
type RoleGroupHandler struct {
	service roleGroupService
}

// NewRoleGroupHandler constructs the handler.
func NewRoleGroupHandler(service roleGroupService) *RoleGroupHandler {
	return &RoleGroupHandler{service: service}
}

// List godoc
// @Summary List role groups visible to the caller
// @Tags RoleGroups
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /role-groups [get]
func (h *RoleGroupHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	groups, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Create godoc
// @Summary Define a new role group
// @Tags RoleGroups
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoleGroupRequest true "Role group details"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /role-groups [post]
func (h *RoleGroupHandler) Create(c *gin.Context) {
	var req dto.CreateRoleGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid role group payload"))
		return
	}
	group, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Edit an existing role group
// @Tags RoleGroups
// @Accept json
// @Produce json
// @Param id path string true "Role group ID"
// @Param payload body dto.UpdateRoleGroupRequest true "Role group details"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /role-groups/{id} [put]
func (h *RoleGroupHandler) Update(c *gin.Context) {
	var req dto.UpdateRoleGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid role group payload"))
		return
	}
	group, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}
