package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
	"github.com/kwsc-digital/efiling-api/pkg/response"
)

type workflowService interface {
	Create(ctx context.Context, req dto.CreateWorkflowRequest, createdBy string) (*models.FileWorkflow, error)
	List(ctx context.Context, query dto.WorkflowQuery) ([]models.WorkflowListItem, error)
}

// WorkflowHandler exposes workflow lifecycle endpoints.
type WorkflowHandler struct {
	service workflowService
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(service workflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// Create godoc
// @Summary Start a workflow for a file
// @Tags Workflows
// @Accept json
// @Produce json
// @Param payload body dto.CreateWorkflowRequest true "Workflow details"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /workflows [post]
func (h *WorkflowHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid workflow payload"))
		return
	}
	workflow, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, workflow)
}

// List godoc
// @Summary List workflows with enriched file and stage details
// @Tags Workflows
// @Produce json
// @Param user_id query string false "Filter by current assignee"
// @Param status query string false "Filter by workflow status"
// @Param department_id query string false "Filter by department"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /workflows [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	query := dto.WorkflowQuery{
		UserID:       c.Query("user_id"),
		Status:       models.WorkflowStatus(c.Query("status")),
		DepartmentID: c.Query("department_id"),
		Page:         1,
		Limit:        20,
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 {
		query.Limit = limit
	}
	items, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &models.Pagination{Page: query.Page, PageSize: query.Limit})
}
