package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-comm-api/internal/dto"
	"github.com/noah-isme/dept-comm-api/internal/middleware"
	"github.com/noah-isme/dept-comm-api/internal/models"
	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
	"github.com/noah-isme/dept-comm-api/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockCommService struct {
	listItems  []models.Announcement
	listErr    error
	created    *models.Announcement
	createErr  error
	lastReq    dto.CreateAnnouncementRequest
	lastFiles  []storage.AttachmentUpload
	deleteErr  error
	deletedIDs []string
	exportData []byte
}

func (m *mockCommService) List(ctx context.Context, actor *models.JWTClaims, req dto.ListAnnouncementsRequest) ([]models.Announcement, *models.Pagination, error) {
	if m.listErr != nil {
		return nil, nil, m.listErr
	}
	return m.listItems, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.listItems)}, nil
}

func (m *mockCommService) Create(ctx context.Context, req dto.CreateAnnouncementRequest, uploads []storage.AttachmentUpload, actor *models.JWTClaims) (*models.Announcement, error) {
	m.lastReq = req
	m.lastFiles = uploads
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.created != nil {
		return m.created, nil
	}
	return &models.Announcement{ID: "generated", Title: req.Title}, nil
}

func (m *mockCommService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockCommService) ExportPDF(ctx context.Context, actor *models.JWTClaims) ([]byte, error) {
	return m.exportData, nil
}

func withClaims(claims *models.JWTClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	}
}

func newAnnouncementRouter(svc *mockCommService, claims *models.JWTClaims) *gin.Engine {
	r := gin.New()
	h := NewAnnouncementHandler(svc)
	r.Use(withClaims(claims))
	r.GET("/announcements", h.List)
	r.POST("/announcements", h.Create)
	r.DELETE("/announcements/:id", h.Delete)
	r.GET("/announcements/export", h.Export)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAnnouncementHandlerList(t *testing.T) {
	svc := &mockCommService{listItems: []models.Announcement{
		{ID: "a-1", Title: "Exam", TargetRole: models.RoleList{"faculty"}},
	}}
	r := newAnnouncementRouter(svc, &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/announcements?category=Examination&page=1&limit=10", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["pagination"])
}

func TestAnnouncementHandlerListUnauthenticated(t *testing.T) {
	r := newAnnouncementRouter(&mockCommService{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/announcements", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, false, body["success"])
}

func TestAnnouncementHandlerCreateMultipart(t *testing.T) {
	svc := &mockCommService{}
	r := newAnnouncementRouter(svc, &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Midterm schedule"))
	require.NoError(t, mw.WriteField("message", "Published on the portal."))
	require.NoError(t, mw.WriteField("targetRole", "faculty,student"))
	part, err := mw.CreateFormFile("files", "syllabus.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/announcements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Midterm schedule", svc.lastReq.Title)
	assert.Equal(t, "faculty,student", svc.lastReq.TargetRole)
	require.Len(t, svc.lastFiles, 1)
	assert.Equal(t, "syllabus.pdf", svc.lastFiles[0].Filename)
}

func TestAnnouncementHandlerCreateValidationError(t *testing.T) {
	svc := &mockCommService{createErr: appErrors.Clone(appErrors.ErrValidation, "title and message are required")}
	r := newAnnouncementRouter(svc, &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", "no title"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/announcements", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestAnnouncementHandlerDelete(t *testing.T) {
	svc := &mockCommService{}
	r := newAnnouncementRouter(svc, &models.JWTClaims{UserID: "u-1", Role: models.RoleFaculty})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/announcements/a-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a-1"}, svc.deletedIDs)
}

func TestAnnouncementHandlerDeleteForbidden(t *testing.T) {
	svc := &mockCommService{deleteErr: appErrors.Clone(appErrors.ErrForbidden, "only the author can delete this announcement")}
	r := newAnnouncementRouter(svc, &models.JWTClaims{UserID: "u-2", Role: models.RoleFaculty})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/announcements/a-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAnnouncementHandlerExport(t *testing.T) {
	svc := &mockCommService{exportData: []byte("%PDF-1.4")}
	r := newAnnouncementRouter(svc, &models.JWTClaims{UserID: "u-1", Role: models.RoleHOD})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/announcements/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "announcements.pdf")
}
