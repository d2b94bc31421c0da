package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-comm-api/internal/dto"
	"github.com/noah-isme/dept-comm-api/internal/models"
	"github.com/noah-isme/dept-comm-api/internal/repository"
	"github.com/noah-isme/dept-comm-api/pkg/config"
	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
	"github.com/noah-isme/dept-comm-api/pkg/export"
	"github.com/noah-isme/dept-comm-api/pkg/storage"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

type attachmentStore interface {
	Store(upload storage.AttachmentUpload) (models.Attachment, string, error)
	Remove(key string) error
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

const announcementCachePrefix = "announcements:"

// CommunicationService is the façade over the announcement board: listing,
// posting with attachments, and creator-scoped deletion. It holds no
// persistent state of its own; the repository owns record storage and the
// store owns attachment binaries.
type CommunicationService struct {
	repo      announcementRepository
	store     attachmentStore
	cache     listCache
	sink      NotificationSink
	metrics   *MetricsService
	exporter  pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
	uploads   config.UploadsConfig
	cacheTTL  time.Duration
}

// NewCommunicationService constructs the façade.
func NewCommunicationService(
	repo announcementRepository,
	store attachmentStore,
	cache listCache,
	sink NotificationSink,
	metrics *MetricsService,
	exporter pdfRenderer,
	validate *validator.Validate,
	logger *zap.Logger,
	uploads config.UploadsConfig,
	cacheTTL time.Duration,
) *CommunicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NopNotificationSink{}
	}
	return &CommunicationService{
		repo:      repo,
		store:     store,
		cache:     cache,
		sink:      sink,
		metrics:   metrics,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		uploads:   uploads,
		cacheTTL:  cacheTTL,
	}
}

type cachedAnnouncementList struct {
	Items []models.Announcement `json:"items"`
	Total int                   `json:"total"`
}

// List returns the announcements visible to the acting identity. A fetch
// failure surfaces as FETCH_FAILED so the caller keeps its current view
// rather than treating the result as an empty list.
func (s *CommunicationService) List(ctx context.Context, actor *models.JWTClaims, req dto.ListAnnouncementsRequest) ([]models.Announcement, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}

	filter := models.AnnouncementFilter{
		Roles:      []models.UserRole{actor.Role},
		Department: actor.Department,
		Category:   models.Category(strings.TrimSpace(req.Category)),
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	key := fmt.Sprintf("%s%s:%s:%s:%d:%d",
		announcementCachePrefix, actor.Role, actor.Department, filter.Category, filter.Page, filter.PageSize)

	if s.cache != nil {
		start := time.Now()
		var cached cachedAnnouncementList
		err := s.cache.Get(ctx, key, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: cached.Total}
			return cached.Items, pagination, nil
		}
		if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("announcement cache lookup failed", zap.Error(err))
		}
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "failed to load announcements")
	}
	if rows == nil {
		rows = []models.Announcement{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedAnnouncementList{Items: rows, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("announcement cache write failed", zap.Error(err))
		}
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Create validates the compose form, stores all attachments, and persists
// the announcement. Validation failures are raised before any storage or
// network work. The submission is all-or-nothing: a failure at any point
// removes the files already stored for it.
func (s *CommunicationService) Create(ctx context.Context, req dto.CreateAnnouncementRequest, uploads []storage.AttachmentUpload, actor *models.JWTClaims) (*models.Announcement, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	// trim before validating so whitespace-only input fails required
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and message are required")
	}
	for _, upload := range uploads {
		if err := s.checkUpload(upload); err != nil {
			return nil, err
		}
	}

	attachments := models.AttachmentList{}
	storedKeys := make([]string, 0, len(uploads))
	cleanup := func() {
		for _, key := range storedKeys {
			if err := s.store.Remove(key); err != nil {
				s.logger.Warn("failed to clean up attachment", zap.String("key", key), zap.Error(err))
			}
		}
	}
	for _, upload := range uploads {
		attachment, key, err := s.store.Store(upload)
		if err != nil {
			cleanup()
			return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "failed to store attachment")
		}
		attachments = append(attachments, attachment)
		storedKeys = append(storedKeys, key)
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = actor.Department
	}

	announcement := &models.Announcement{
		Title:      req.Title,
		Message:    req.Message,
		Category:   models.NormalizeCategory(req.Category),
		TargetRole: models.SplitRoles(req.TargetRole),
		Department: department,
		CreatedBy: models.CreatedBy{
			ID:     actor.UserID,
			Name:   actor.FullName,
			Avatar: actor.Avatar,
		},
		CreatorRole: actor.Role,
		Attachments: attachments,
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		cleanup()
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "failed to post announcement")
	}

	s.invalidateListCache(ctx)
	s.sink.Publish(ctx, Event{
		Type:       EventAnnouncementCreated,
		ResourceID: announcement.ID,
		Actor:      actor.UserID,
		Message:    announcement.Title,
	})

	return announcement, nil
}

// Delete removes an announcement after the creator-owns-record check. When
// the guard rejects, no deletion request reaches the repository. The cached
// view is only invalidated after confirmed success.
func (s *CommunicationService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}

	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "failed to load announcement")
	}

	if !CanDelete(actor, announcement) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author can delete this announcement")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement already deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrDeletionFailed.Code, appErrors.ErrDeletionFailed.Status, "failed to delete announcement")
	}

	for _, attachment := range announcement.Attachments {
		key := attachmentKeyFromURL(attachment.URL)
		if key == "" {
			continue
		}
		if err := s.store.Remove(key); err != nil {
			s.logger.Warn("failed to remove attachment file", zap.String("key", key), zap.Error(err))
		}
	}

	s.invalidateListCache(ctx)
	s.sink.Publish(ctx, Event{
		Type:       EventAnnouncementDeleted,
		ResourceID: id,
		Actor:      actor.UserID,
		Message:    announcement.Title,
	})

	return nil
}

// ExportPDF renders the caller's visible announcements into a digest PDF.
func (s *CommunicationService) ExportPDF(ctx context.Context, actor *models.JWTClaims) ([]byte, error) {
	if s.exporter == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled")
	}
	rows, _, err := s.List(ctx, actor, dto.ListAnnouncementsRequest{PageSize: 100})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Title", "Category", "Audience", "Posted By", "Date"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Title":     row.Title,
			"Category":  string(row.Category),
			"Audience":  row.TargetRole.String(),
			"Posted By": row.CreatedBy.Name,
			"Date":      row.CreatedAt.Format("2006-01-02"),
		})
	}

	data, err := s.exporter.Render(dataset, "Department Announcements")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render announcement digest")
	}
	return data, nil
}

func (s *CommunicationService) checkUpload(upload storage.AttachmentUpload) error {
	if s.uploads.MaxFileSizeBytes > 0 && upload.Size > s.uploads.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file %s exceeds the size limit", upload.Filename))
	}
	if len(s.uploads.AllowedMIMEs) == 0 {
		return nil
	}
	for _, allowed := range s.uploads.AllowedMIMEs {
		if strings.EqualFold(allowed, upload.MimeType) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %s is not allowed", upload.MimeType))
}

func (s *CommunicationService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, announcementCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate announcement cache", zap.Error(err))
	}
}

// attachmentKeyFromURL recovers the storage key from a signed download URL.
func attachmentKeyFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !strings.Contains(parsed.Path, "/files/") {
		return ""
	}
	return path.Base(parsed.Path)
}
