package handler

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
	"github.com/noah-isme/dept-comm-api/pkg/response"
)

type attachmentOpener interface {
	Open(key string) (*os.File, int64, error)
}

type downloadTokenParser interface {
	Parse(token string) (string, time.Time, error)
}

// FileHandler serves stored announcement attachments via signed URLs.
type FileHandler struct {
	store  attachmentOpener
	signer downloadTokenParser
}

// NewFileHandler constructs the handler.
func NewFileHandler(store attachmentOpener, signer downloadTokenParser) *FileHandler {
	return &FileHandler{store: store, signer: signer}
}

// Download godoc
// @Summary Download an attachment via signed token
// @Tags Files
// @Produce octet-stream
// @Param name path string true "Storage key"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /files/{name} [get]
func (h *FileHandler) Download(c *gin.Context) {
	name := c.Param("name")
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	key, _, err := h.signer.Parse(token)
	if err != nil || key != name {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token"))
		return
	}

	file, size, err := h.store.Open(key)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "attachment not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", displayName(key)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, contentType, file, nil)
}

// displayName strips the uuid prefix applied by the store.
func displayName(key string) string {
	if idx := strings.Index(key, "-"); idx >= 0 && len(key) > 37 {
		return key[37:]
	}
	return key
}
