package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-comm-api/internal/dto"
	"github.com/noah-isme/dept-comm-api/internal/models"
	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
	"github.com/noah-isme/dept-comm-api/pkg/response"
	"github.com/noah-isme/dept-comm-api/pkg/storage"
)

type communicationService interface {
	List(ctx context.Context, actor *models.JWTClaims, req dto.ListAnnouncementsRequest) ([]models.Announcement, *models.Pagination, error)
	Create(ctx context.Context, req dto.CreateAnnouncementRequest, uploads []storage.AttachmentUpload, actor *models.JWTClaims) (*models.Announcement, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	ExportPDF(ctx context.Context, actor *models.JWTClaims) ([]byte, error)
}

// AnnouncementHandler manages the announcement board HTTP endpoints.
type AnnouncementHandler struct {
	service communicationService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(service communicationService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// List godoc
// @Summary List announcements visible to the caller
// @Tags Announcements
// @Produce json
// @Param category query string false "Category filter"
// @Param page query integer false "Page"
// @Param limit query integer false "Page size"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ListAnnouncementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid list parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Post an announcement with optional attachments
// @Tags Announcements
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param message formData string true "Message"
// @Param category formData string false "Category"
// @Param targetRole formData string false "Comma-joined target roles"
// @Param department formData string false "Department scope"
// @Param files formData file false "Attachments"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid announcement payload"))
		return
	}

	var fileHeaders []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		fileHeaders = form.File["files"]
	}

	uploads := make([]storage.AttachmentUpload, 0, len(fileHeaders))
	closers := make([]multipart.File, 0, len(fileHeaders))
	defer func() {
		for _, src := range closers {
			_ = src.Close()
		}
	}()
	for _, header := range fileHeaders {
		src, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open attachment"))
			return
		}
		closers = append(closers, src)
		uploads = append(uploads, storage.AttachmentUpload{
			Filename: header.Filename,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
			Content:  src,
		})
	}

	announcement, err := h.service.Create(c.Request.Context(), req, uploads, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// Delete godoc
// @Summary Delete an announcement (author only)
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id")})
}

// Export godoc
// @Summary Export visible announcements as a PDF digest
// @Tags Announcements
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /announcements/export [get]
func (h *AnnouncementHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	data, err := h.service.ExportPDF(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "announcements.pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}
