package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kwsc-digital/efiling-api/internal/dto"
	"github.com/kwsc-digital/efiling-api/internal/middleware"
	"github.com/kwsc-digital/efiling-api/internal/models"
	appErrors "github.com/kwsc-digital/efiling-api/pkg/errors"
)

type fileServiceMock struct {
	file      *models.File
	getErr    error
	createdBy string
}

func (m *fileServiceMock) Create(ctx context.Context, req dto.CreateFileRequest, createdBy string) (*models.File, error) {
	m.createdBy = createdBy
	return &models.File{ID: "file-1", Subject: req.Subject, CreatedBy: createdBy}, nil
}

func (m *fileServiceMock) Get(ctx context.Context, id string) (*models.File, error) {
	return m.file, m.getErr
}

func (m *fileServiceMock) List(ctx context.Context, query dto.FileQuery, callerUserID string) ([]models.File, error) {
	return nil, nil
}

func (m *fileServiceMock) AddAttachment(ctx context.Context, fileID, uploadedBy, fileName, contentType string, size int64, r io.Reader) (*dto.AttachmentResponse, error) {
	return nil, nil
}

func (m *fileServiceMock) OpenAttachment(ctx context.Context, fileID, attachmentID, token string) (*models.FileAttachment, io.ReadCloser, error) {
	return nil, nil, nil
}

type assignmentServiceMock struct {
	result   *dto.AssignFileResult
	err      error
	fileID   string
	actorID  string
	captured dto.AssignFileRequest
}

func (m *assignmentServiceMock) Assign(ctx context.Context, fileID, actorUserID string, req dto.AssignFileRequest) (*dto.AssignFileResult, error) {
	m.fileID = fileID
	m.actorID = actorUserID
	m.captured = req
	return m.result, m.err
}

type timelineServiceMock struct {
	events []dto.TimelineEvent
}

func (m *timelineServiceMock) Timeline(ctx context.Context, fileID string) ([]dto.TimelineEvent, error) {
	return m.events, nil
}

func testClaimsContext(w *httptest.ResponseRecorder, req *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "actor-1", Email: "actor@kwsc.gos.pk", Role: models.RoleUser})
	return c
}

func TestAssignSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assignMock := &assignmentServiceMock{result: &dto.AssignFileResult{FileID: "file-1", ToUserID: "user-2", StageID: "stage-2", StageName: "Review"}}
	handler := &FileHandler{assignments: assignMock}

	body := []byte(`{"to_user_id":"user-2","remarks":"please review"}`)
	req, _ := http.NewRequest(http.MethodPost, "/files/file-1/assign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := testClaimsContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}

	handler.Assign(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "file-1", assignMock.fileID)
	require.Equal(t, "actor-1", assignMock.actorID)
	require.Equal(t, "user-2", assignMock.captured.ToUserID)
	require.NotNil(t, assignMock.captured.Remarks)
}

func TestAssignMissingTargetValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &FileHandler{assignments: &assignmentServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/files/file-1/assign", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := testClaimsContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}

	handler.Assign(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignWithoutClaimsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &FileHandler{assignments: &assignmentServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/files/file-1/assign", bytes.NewReader([]byte(`{"to_user_id":"user-2"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Assign(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAssignConflictSurfacesStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assignMock := &assignmentServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "file moved to another stage, reload and retry")}
	handler := &FileHandler{assignments: assignMock}

	req, _ := http.NewRequest(http.MethodPost, "/files/file-1/assign", bytes.NewReader([]byte(`{"to_user_id":"user-2"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := testClaimsContext(w, req)
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}

	handler.Assign(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestTimelineReturnsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &FileHandler{timeline: &timelineServiceMock{events: []dto.TimelineEvent{
		{Type: dto.TimelineEventCreated, Title: "File created"},
		{Type: dto.TimelineEventAssigned, Title: "File assigned"},
	}}}

	req, _ := http.NewRequest(http.MethodGet, "/files/file-1/timeline", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "file-1"}}

	handler.Timeline(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []dto.TimelineEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	require.Equal(t, dto.TimelineEventCreated, envelope.Data[0].Type)
}

func TestCreateFilePassesCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fileMock := &fileServiceMock{}
	handler := &FileHandler{files: fileMock}

	req, _ := http.NewRequest(http.MethodPost, "/files", bytes.NewReader([]byte(`{"subject":"Pipeline repair"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c := testClaimsContext(w, req)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "actor-1", fileMock.createdBy)
}
