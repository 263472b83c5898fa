package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
	"github.com/kwsc-digital/efiling-api/pkg/response"
)

type fileService interface {
	Create(ctx context.Context, req dto.CreateFileRequest, createdBy string) (*models.File, error)
	Get(ctx context.Context, id string) (*models.File, error)
	List(ctx context.Context, query dto.FileQuery, callerUserID string) ([]models.File, error)
	AddAttachment(ctx context.Context, fileID, uploadedBy, fileName, contentType string, size int64, r io.Reader) (*dto.AttachmentResponse, error)
	OpenAttachment(ctx context.Context, fileID, attachmentID, token string) (*models.FileAttachment, io.ReadCloser, error)
}

type assignmentService interface {
	Assign(ctx context.Context, fileID, actorUserID string, req dto.AssignFileRequest) (*dto.AssignFileResult, error)
}

type timelineService interface {
	Timeline(ctx context.Context, fileID string) ([]dto.TimelineEvent, error)
}

type timelineExporter interface {
	Render(fileNumber, subject string, events []dto.TimelineEvent) ([]byte, error)
}

// FileHandler exposes file registration, routing and history endpoints.
type FileHandler struct {
	files       fileService
	assignments assignmentService
	timeline    timelineService
	exporter    timelineExporter
}

// NewFileHandler constructs the handler.
func NewFileHandler(files fileService, assignments assignmentService, timeline timelineService, exporter timelineExporter) *FileHandler {
	return &FileHandler{files: files, assignments: assignments, timeline: timeline, exporter: exporter}
}

// Create godoc
// @Summary Register a new file
// @Tags Files
// @Accept json
// @Produce json
// @Param payload body dto.CreateFileRequest true "File details"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /files [post]
func (h *FileHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid file payload"))
		return
	}
	file, err := h.files.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Get godoc
// @Summary Fetch a file by id
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) Get(c *gin.Context) {
	file, err := h.files.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, file, nil)
}

// List godoc
// @Summary List files visible to the caller
// @Tags Files
// @Produce json
// @Param status query string false "Filter by status"
// @Param assigned_to query string false "Filter by current assignee"
// @Param search query string false "Match file number or subject"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query := dto.FileQuery{
		Status:     models.FileStatus(c.Query("status")),
		AssignedTo: c.Query("assigned_to"),
		Search:     c.Query("search"),
		Page:       1,
		Limit:      20,
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && limit > 0 {
		query.Limit = limit
	}
	files, err := h.files.List(c.Request.Context(), query, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, &models.Pagination{Page: query.Page, PageSize: query.Limit})
}

// Assign godoc
// @Summary Forward a file to another user
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param payload body dto.AssignFileRequest true "Assignment details"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /files/{id}/assign [post]
func (h *FileHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AssignFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"))
		return
	}
	result, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Timeline godoc
// @Summary Chronological history of a file
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /files/{id}/timeline [get]
func (h *FileHandler) Timeline(c *gin.Context) {
	events, err := h.timeline.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// ExportTimeline godoc
// @Summary Download the movement register as PDF
// @Tags Files
// @Produce application/pdf
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /files/{id}/timeline/export [get]
func (h *FileHandler) ExportTimeline(c *gin.Context) {
	fileID := c.Param("id")
	file, err := h.files.Get(c.Request.Context(), fileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.timeline.Timeline(c.Request.Context(), fileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.exporter.Render(file.FileNumber, file.Subject, events)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render movement register"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=movement-register-%s.pdf", fileID))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// UploadAttachment godoc
// @Summary Attach a document to a file
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "File ID"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /files/{id}/attachments [post]
func (h *FileHandler) UploadAttachment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field 'file' is required"))
		return
	}
	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file"))
		return
	}
	defer src.Close() //nolint:errcheck

	contentType := header.Header.Get("Content-Type")
	result, err := h.files.AddAttachment(c.Request.Context(), c.Param("id"), claims.UserID, header.Filename, contentType, header.Size, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// DownloadAttachment godoc
// @Summary Download an attachment via its signed token
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Param attachmentId path string true "Attachment ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /files/{id}/attachments/{attachmentId} [get]
func (h *FileHandler) DownloadAttachment(c *gin.Context) {
	attachment, reader, err := h.files.OpenAttachment(c.Request.Context(), c.Param("id"), c.Param("attachmentId"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	c.DataFromReader(http.StatusOK, attachment.SizeBytes, attachment.ContentType, reader, nil)
}
