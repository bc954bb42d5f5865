package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grace-stack/flock-api/internal/models"
)

// LinkRepository handles persistence for attendance links.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository constructs the repository.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, token, service_type, service_event_id, service_name, service_date,
is_active, expires_at, created_by, created_at`

// Insert persists a freshly issued link.
func (r *LinkRepository) Insert(ctx context.Context, link *models.AttendanceLink) (*models.AttendanceLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	link.ServiceDate = models.NormalizeServiceDate(link.ServiceDate)
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO attendance_links (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING %s`, linkColumns, linkColumns)

	var stored models.AttendanceLink
	err := r.db.GetContext(ctx, &stored, query,
		link.ID,
		link.Token,
		link.ServiceType,
		link.ServiceEventID,
		link.ServiceName,
		link.ServiceDate,
		link.IsActive,
		link.ExpiresAt,
		link.CreatedBy,
		link.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attendance link: %w", err)
	}
	return &stored, nil
}

// GetByToken fetches a link by its opaque token. sql.ErrNoRows passes through
// for the service layer to map.
func (r *LinkRepository) GetByToken(ctx context.Context, token string) (*models.AttendanceLink, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_links WHERE token = $1", linkColumns)
	var link models.AttendanceLink
	if err := r.db.GetContext(ctx, &link, query, token); err != nil {
		return nil, err
	}
	return &link, nil
}

// Deactivate flips is_active off. Links are never deleted; expired and
// deactivated rows remain as an audit trail.
func (r *LinkRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE attendance_links SET is_active = FALSE WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deactivate attendance link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate attendance link: %w", err)
	}
	return affected > 0, nil
}

// List returns links ordered by creation time, newest first.
func (r *LinkRepository) List(ctx context.Context, activeOnly bool, limit int) ([]models.AttendanceLink, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM attendance_links", linkColumns)
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	var links []models.AttendanceLink
	if err := r.db.SelectContext(ctx, &links, query); err != nil {
		return nil, fmt.Errorf("list attendance links: %w", err)
	}
	return links, nil
}
