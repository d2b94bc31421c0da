package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-comm-api/internal/models"
)

// ErrNoRowsAffected signals a mutation that matched no rows.
var ErrNoRowsAffected = errors.New("no rows affected")

const queryColumns = `id, student, roll_no, subject, message, status, COALESCE(reply, '') AS reply, date, replied_at`

// QueryRepository persists student query threads.
type QueryRepository struct {
	db *sqlx.DB
}

// NewQueryRepository creates the repository.
func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// List returns every query thread, newest first.
func (r *QueryRepository) List(ctx context.Context) ([]models.Query, error) {
	query := fmt.Sprintf("SELECT %s FROM queries ORDER BY date DESC", queryColumns)
	var threads []models.Query
	if err := r.db.SelectContext(ctx, &threads, query); err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return threads, nil
}

// GetByID returns one query thread.
func (r *QueryRepository) GetByID(ctx context.Context, id string) (*models.Query, error) {
	query := fmt.Sprintf("SELECT %s FROM queries WHERE id = $1", queryColumns)
	var thread models.Query
	if err := r.db.GetContext(ctx, &thread, query, id); err != nil {
		return nil, err
	}
	return &thread, nil
}

// Create inserts a new pending query thread.
func (r *QueryRepository) Create(ctx context.Context, thread *models.Query) error {
	if thread.ID == "" {
		thread.ID = uuid.NewString()
	}
	if thread.Date.IsZero() {
		thread.Date = time.Now().UTC()
	}
	thread.Status = models.QueryStatusPending

	const query = `INSERT INTO queries (id, student, roll_no, subject, message, status, date)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		thread.ID,
		thread.Student,
		thread.RollNo,
		thread.Subject,
		thread.Message,
		string(thread.Status),
		thread.Date,
	); err != nil {
		return fmt.Errorf("create query: %w", err)
	}
	return nil
}

// UpdateReply stores the staff reply and flips the status to replied.
func (r *QueryRepository) UpdateReply(ctx context.Context, id, reply string, repliedAt time.Time) error {
	const query = `UPDATE queries SET reply = $2, status = 'replied', replied_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, reply, repliedAt)
	if err != nil {
		return fmt.Errorf("update query reply: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update query reply: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
