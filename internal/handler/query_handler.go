package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dept-comm-api/internal/dto"
	"github.com/noah-isme/dept-comm-api/internal/models"
	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
	"github.com/noah-isme/dept-comm-api/pkg/response"
)

type queryService interface {
	Refresh(ctx context.Context) error
	Search(term string) []models.Query
	Reply(ctx context.Context, id string, req dto.ReplyQueryRequest, actor *models.JWTClaims) (*models.Query, error)
	Submit(ctx context.Context, req dto.SubmitQueryRequest, actor *models.JWTClaims) (*models.Query, error)
	ExportCSV() ([]byte, error)
}

// QueryHandler manages the query/reply thread HTTP endpoints.
type QueryHandler struct {
	service queryService
}

// NewQueryHandler constructs the handler.
func NewQueryHandler(service queryService) *QueryHandler {
	return &QueryHandler{service: service}
}

// List godoc
// @Summary List query threads, optionally filtered by search term
// @Tags Queries
// @Produce json
// @Param search query string false "Search over student and subject"
// @Success 200 {object} response.Envelope
// @Router /queries [get]
func (h *QueryHandler) List(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		// the caller keeps its current list; report the failure once
		response.Error(c, err)
		return
	}
	response.OK(c, h.service.Search(c.Query("search")))
}

// Reply godoc
// @Summary Reply to a query thread
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path string true "Query ID"
// @Param payload body dto.ReplyQueryRequest true "Reply"
// @Success 200 {object} response.Envelope
// @Router /queries/{id}/reply [post]
func (h *QueryHandler) Reply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReplyQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reply payload"))
		return
	}
	thread, err := h.service.Reply(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, thread)
}

// Submit godoc
// @Summary Submit a new student query
// @Tags Queries
// @Accept json
// @Produce json
// @Param payload body dto.SubmitQueryRequest true "Query"
// @Success 201 {object} response.Envelope
// @Router /queries [post]
func (h *QueryHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query payload"))
		return
	}
	thread, err := h.service.Submit(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, thread)
}

// Export godoc
// @Summary Export query threads as CSV
// @Tags Queries
// @Produce text/csv
// @Success 200 {file} binary
// @Router /queries/export [get]
func (h *QueryHandler) Export(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.service.ExportCSV()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "queries.csv"))
	c.Data(http.StatusOK, "text/csv", data)
}
