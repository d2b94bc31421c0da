package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dept-comm-api/internal/models"
)

const announcementColumns = `id, title, message, category, target_role, COALESCE(department, '') AS department,
created_by_id AS "created_by.id", created_by_name AS "created_by.name", COALESCE(created_by_avatar, '') AS "created_by.avatar",
creator_role, attachments, created_at`

// AnnouncementRepository provides persistence for announcements. Target
// roles are stored in the comma-joined wire encoding and canonicalized on
// every read, so callers never observe a malformed targetRole or a
// non-sequence attachments value.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements visible to the provided audience scope.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	audiences := make([]string, 0, len(filter.Roles)+1)
	for _, role := range filter.Roles {
		audiences = append(audiences, string(role))
	}
	audiences = append(audiences, models.RoleAll)

	where := "string_to_array(target_role, ',') && $1 AND (COALESCE(department, '') = '' OR $2 = '' OR department = $2)"
	args := []interface{}{pq.Array(audiences), filter.Department}
	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, string(filter.Category))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
FROM announcements WHERE %s
ORDER BY created_at DESC
LIMIT %d OFFSET %d`, announcementColumns, where, size, offset)

	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	for i := range announcements {
		announcements[i].Canonicalize()
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM announcements WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return announcements, total, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements WHERE id = $1", announcementColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		return nil, err
	}
	announcement.Canonicalize()
	return &announcement, nil
}

// Create inserts a new announcement. ID and creation timestamp are assigned
// here, exactly once, never by the caller.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	announcement.ID = uuid.NewString()
	announcement.CreatedAt = time.Now().UTC()
	announcement.Canonicalize()

	const query = `INSERT INTO announcements
(id, title, message, category, target_role, department, created_by_id, created_by_name, created_by_avatar, creator_role, attachments, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(ctx, query,
		announcement.ID,
		announcement.Title,
		announcement.Message,
		string(announcement.Category),
		announcement.TargetRole,
		announcement.Department,
		announcement.CreatedBy.ID,
		announcement.CreatedBy.Name,
		announcement.CreatedBy.Avatar,
		string(announcement.CreatorRole),
		announcement.Attachments,
		announcement.CreatedAt,
	); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement. Deleting an id that is already gone is an
// error, not a no-op; duplicate delete attempts must surface to the caller.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
