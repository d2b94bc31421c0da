package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-comm-api/internal/dto"
	"github.com/noah-isme/dept-comm-api/internal/models"
	"github.com/noah-isme/dept-comm-api/internal/repository"
	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
	"github.com/noah-isme/dept-comm-api/pkg/export"
)

type queryRepository interface {
	List(ctx context.Context) ([]models.Query, error)
	GetByID(ctx context.Context, id string) (*models.Query, error)
	Create(ctx context.Context, thread *models.Query) error
	UpdateReply(ctx context.Context, id, reply string, repliedAt time.Time) error
}

// QueryService owns the query/reply thread store. It keeps an in-memory
// snapshot hydrated from the repository so that Search stays synchronous and
// I/O free; mutations write through to the repository and update the
// snapshot only on confirmed success. Readers always receive fresh slices.
type QueryService struct {
	repo      queryRepository
	sink      NotificationSink
	validator *validator.Validate
	logger    *zap.Logger

	mu      sync.RWMutex
	threads []models.Query
}

// NewQueryService constructs the service. Call Refresh before serving.
func NewQueryService(repo queryRepository, sink NotificationSink, validate *validator.Validate, logger *zap.Logger) *QueryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NopNotificationSink{}
	}
	return &QueryService{repo: repo, sink: sink, validator: validate, logger: logger}
}

// Refresh reloads the snapshot from the repository. On failure the current
// snapshot is left untouched: a fetch failure means no change to the
// caller's view, never an empty list.
func (s *QueryService) Refresh(ctx context.Context) error {
	threads, err := s.repo.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "failed to load queries")
	}
	s.mu.Lock()
	s.threads = threads
	s.mu.Unlock()
	return nil
}

// Search filters the snapshot with a case-insensitive substring match over
// the student and subject fields only. The empty term matches everything.
// Pure and synchronous; never touches the repository.
func (s *QueryService) Search(term string) []models.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Query, 0, len(s.threads))
	for _, thread := range s.threads {
		if thread.MatchesSearch(term) {
			out = append(out, thread)
		}
	}
	return out
}

// Get returns the query with the given id from the snapshot, or nil.
func (s *QueryService) Get(id string) *models.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, thread := range s.threads {
		if thread.ID == id {
			copied := thread
			return &copied
		}
	}
	return nil
}

// Reply stores the staff answer and transitions the thread from pending to
// replied. Empty reply text fails validation before any I/O and leaves the
// status unchanged. A reply to an already-replied thread overwrites the
// previous answer.
func (s *QueryService) Reply(ctx context.Context, id string, req dto.ReplyQueryRequest, actor *models.JWTClaims) (*models.Query, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Reply = strings.TrimSpace(req.Reply)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "reply text is required")
	}

	repliedAt := time.Now().UTC()
	if err := s.repo.UpdateReply(ctx, id, req.Reply, repliedAt); err != nil {
		if errors.Is(err, repository.ErrNoRowsAffected) || errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "failed to send reply")
	}

	updated := s.applyReply(id, req.Reply, repliedAt)
	if updated == nil {
		// snapshot did not contain the row; rehydrate quietly
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("failed to refresh query snapshot", zap.Error(err))
		}
		updated = s.Get(id)
	}

	s.sink.Publish(ctx, Event{
		Type:       EventQueryReplied,
		ResourceID: id,
		Actor:      actor.UserID,
		Message:    req.Reply,
	})

	if updated == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
	}
	return updated, nil
}

// Submit records a new pending query from a student.
func (s *QueryService) Submit(ctx context.Context, req dto.SubmitQueryRequest, actor *models.JWTClaims) (*models.Query, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rollNo, subject and message are required")
	}

	thread := &models.Query{
		Student: actor.FullName,
		RollNo:  strings.TrimSpace(req.RollNo),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, thread); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSubmissionFailed.Code, appErrors.ErrSubmissionFailed.Status, "failed to submit query")
	}

	s.mu.Lock()
	s.threads = append([]models.Query{*thread}, s.threads...)
	s.mu.Unlock()

	s.sink.Publish(ctx, Event{
		Type:       EventQuerySubmitted,
		ResourceID: thread.ID,
		Actor:      actor.UserID,
		Message:    thread.Subject,
	})

	return thread, nil
}

// ExportCSV renders the current snapshot into CSV bytes.
func (s *QueryService) ExportCSV() ([]byte, error) {
	dataset := export.Dataset{
		Headers: []string{"Student", "Roll No", "Subject", "Status", "Date", "Reply"},
	}
	for _, thread := range s.Search("") {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student": thread.Student,
			"Roll No": thread.RollNo,
			"Subject": thread.Subject,
			"Status":  string(thread.Status),
			"Date":    thread.Date.Format("2006-01-02"),
			"Reply":   thread.Reply,
		})
	}

	data, err := export.NewCSVExporter().Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render query export")
	}
	return data, nil
}

func (s *QueryService) applyReply(id, reply string, repliedAt time.Time) *models.Query {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.threads {
		if s.threads[i].ID == id {
			s.threads[i].Reply = reply
			s.threads[i].Status = models.QueryStatusReplied
			s.threads[i].RepliedAt = &repliedAt
			copied := s.threads[i]
			return &copied
		}
	}
	return nil
}
