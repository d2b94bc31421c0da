package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-comm-api/internal/dto"
	"github.com/noah-isme/dept-comm-api/internal/models"
	"github.com/noah-isme/dept-comm-api/internal/repository"
	appErrors "github.com/noah-isme/dept-comm-api/pkg/errors"
)

type mockQueryRepo struct {
	threads      []models.Query
	listErr      error
	createErr    error
	replyErr     error
	replyCalls   int
	createdCount int
}

func (m *mockQueryRepo) List(ctx context.Context) ([]models.Query, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Query, len(m.threads))
	copy(out, m.threads)
	return out, nil
}

func (m *mockQueryRepo) GetByID(ctx context.Context, id string) (*models.Query, error) {
	for _, thread := range m.threads {
		if thread.ID == id {
			copied := thread
			return &copied, nil
		}
	}
	return nil, repository.ErrNoRowsAffected
}

func (m *mockQueryRepo) Create(ctx context.Context, thread *models.Query) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdCount++
	thread.ID = "generated"
	thread.Status = models.QueryStatusPending
	thread.Date = time.Now().UTC()
	m.threads = append([]models.Query{*thread}, m.threads...)
	return nil
}

func (m *mockQueryRepo) UpdateReply(ctx context.Context, id, reply string, repliedAt time.Time) error {
	m.replyCalls++
	if m.replyErr != nil {
		return m.replyErr
	}
	for i := range m.threads {
		if m.threads[i].ID == id {
			m.threads[i].Reply = reply
			m.threads[i].Status = models.QueryStatusReplied
			m.threads[i].RepliedAt = &repliedAt
			return nil
		}
	}
	return repository.ErrNoRowsAffected
}

type capturingSink struct {
	events []Event
}

func (s *capturingSink) Publish(_ context.Context, event Event) {
	s.events = append(s.events, event)
}

func seedThreads() []models.Query {
	return []models.Query{
		{ID: "q-1", Student: "Aditya Kumar", RollNo: "CS-21-014", Subject: "Data Structures", Message: "Doubt in AVL rotations", Status: models.QueryStatusPending},
		{ID: "q-2", Student: "Priya Sharma", RollNo: "CS-21-032", Subject: "Algorithms", Message: "Assignment 3 deadline?", Status: models.QueryStatusPending},
	}
}

func newQueryService(t *testing.T, repo *mockQueryRepo, sink NotificationSink) *QueryService {
	t.Helper()
	svc := NewQueryService(repo, sink, validator.New(), zap.NewNop())
	require.NoError(t, svc.Refresh(context.Background()))
	return svc
}

func TestQueryServiceSearch(t *testing.T) {
	svc := newQueryService(t, &mockQueryRepo{threads: seedThreads()}, nil)

	all := svc.Search("")
	assert.Len(t, all, 2)

	byStudent := svc.Search("priya")
	require.Len(t, byStudent, 1)
	assert.Equal(t, "q-2", byStudent[0].ID)

	bySubject := svc.Search("ALGO")
	require.Len(t, bySubject, 1)
	assert.Equal(t, "q-2", bySubject[0].ID)

	// message text never matches
	assert.Empty(t, svc.Search("deadline"))
	assert.Empty(t, svc.Search("nobody"))
}

func TestQueryServiceSearchReturnsFreshSlices(t *testing.T) {
	svc := newQueryService(t, &mockQueryRepo{threads: seedThreads()}, nil)

	first := svc.Search("")
	first[0].Student = "mutated"

	second := svc.Search("")
	assert.Equal(t, "Aditya Kumar", second[0].Student)
}

func TestQueryServiceRefreshFailureKeepsSnapshot(t *testing.T) {
	repo := &mockQueryRepo{threads: seedThreads()}
	svc := newQueryService(t, repo, nil)

	repo.listErr = errors.New("connection refused")
	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrFetchFailed))

	// the previous snapshot stays visible, not an empty list
	assert.Len(t, svc.Search(""), 2)
}

func TestQueryServiceReply(t *testing.T) {
	repo := &mockQueryRepo{threads: seedThreads()}
	sink := &capturingSink{}
	svc := newQueryService(t, repo, sink)
	actor := &models.JWTClaims{UserID: "staff-1", Role: models.RoleFaculty, FullName: "Dr. Rao"}

	thread, err := svc.Reply(context.Background(), "q-1", dto.ReplyQueryRequest{Reply: "  Rotations are covered in unit 4.  "}, actor)
	require.NoError(t, err)
	assert.Equal(t, models.QueryStatusReplied, thread.Status)
	assert.Equal(t, "Rotations are covered in unit 4.", thread.Reply)
	assert.NotNil(t, thread.RepliedAt)

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventQueryReplied, sink.events[0].Type)
	assert.Equal(t, "q-1", sink.events[0].ResourceID)
}

func TestQueryServiceReplyEmptyTextFailsBeforeIO(t *testing.T) {
	repo := &mockQueryRepo{threads: seedThreads()}
	svc := newQueryService(t, repo, nil)
	actor := &models.JWTClaims{UserID: "staff-1", Role: models.RoleFaculty}

	_, err := svc.Reply(context.Background(), "q-1", dto.ReplyQueryRequest{Reply: "   "}, actor)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, repo.replyCalls)

	// status is untouched
	assert.Equal(t, models.QueryStatusPending, svc.Get("q-1").Status)
}

func TestQueryServiceReplyUnknownID(t *testing.T) {
	svc := newQueryService(t, &mockQueryRepo{threads: seedThreads()}, nil)
	actor := &models.JWTClaims{UserID: "staff-1", Role: models.RoleFaculty}

	_, err := svc.Reply(context.Background(), "q-missing", dto.ReplyQueryRequest{Reply: "hello"}, actor)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestQueryServiceReplyOverwritesPreviousAnswer(t *testing.T) {
	svc := newQueryService(t, &mockQueryRepo{threads: seedThreads()}, nil)
	actor := &models.JWTClaims{UserID: "staff-1", Role: models.RoleFaculty}

	_, err := svc.Reply(context.Background(), "q-2", dto.ReplyQueryRequest{Reply: "First answer"}, actor)
	require.NoError(t, err)

	thread, err := svc.Reply(context.Background(), "q-2", dto.ReplyQueryRequest{Reply: "Corrected answer"}, actor)
	require.NoError(t, err)
	assert.Equal(t, "Corrected answer", thread.Reply)
	assert.Equal(t, models.QueryStatusReplied, thread.Status)
}

func TestQueryServiceSubmit(t *testing.T) {
	repo := &mockQueryRepo{}
	sink := &capturingSink{}
	svc := newQueryService(t, repo, sink)
	actor := &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent, FullName: "Aditya Kumar"}

	thread, err := svc.Submit(context.Background(), dto.SubmitQueryRequest{
		RollNo:  "CS-21-014",
		Subject: "Operating Systems",
		Message: "Is the lab rescheduled?",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "generated", thread.ID)
	assert.Equal(t, "Aditya Kumar", thread.Student)
	assert.Equal(t, models.QueryStatusPending, thread.Status)

	// the new thread is visible without a refresh
	assert.Len(t, svc.Search("aditya"), 1)

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventQuerySubmitted, sink.events[0].Type)
}

func TestQueryServiceSubmitMissingFields(t *testing.T) {
	repo := &mockQueryRepo{}
	svc := newQueryService(t, repo, nil)
	actor := &models.JWTClaims{UserID: "stu-1", Role: models.RoleStudent}

	_, err := svc.Submit(context.Background(), dto.SubmitQueryRequest{Subject: "OS"}, actor)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, repo.createdCount)
}

func TestQueryServiceExportCSV(t *testing.T) {
	svc := newQueryService(t, &mockQueryRepo{threads: seedThreads()}, nil)

	data, err := svc.ExportCSV()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Priya Sharma")
	assert.Contains(t, string(data), "Data Structures")
}
