package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grace-stack/flock-api/internal/models"
)

// ServiceEventRepository handles the service calendar.
type ServiceEventRepository struct {
	db *sqlx.DB
}

// NewServiceEventRepository constructs the repository.
func NewServiceEventRepository(db *sqlx.DB) *ServiceEventRepository {
	return &ServiceEventRepository{db: db}
}

const serviceEventColumns = `id, service_type, name, service_date, starts_at, created_by, created_at`

// Insert schedules a service occurrence.
func (r *ServiceEventRepository) Insert(ctx context.Context, event *models.ServiceEvent) (*models.ServiceEvent, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.ServiceDate = models.NormalizeServiceDate(event.ServiceDate)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO service_events (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING %s`, serviceEventColumns, serviceEventColumns)

	var stored models.ServiceEvent
	err := r.db.GetContext(ctx, &stored, query,
		event.ID, event.ServiceType, event.Name, event.ServiceDate, event.StartsAt, event.CreatedBy, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert service event: %w", err)
	}
	return &stored, nil
}

// List returns occurrences matching the filter, newest first.
func (r *ServiceEventRepository) List(ctx context.Context, filter models.ServiceEventFilter) ([]models.ServiceEvent, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ServiceType != nil && filter.ServiceType.Valid() {
		where = append(where, fmt.Sprintf("service_type = $%d", len(args)+1))
		args = append(args, *filter.ServiceType)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("service_date >= $%d", len(args)+1))
		args = append(args, models.NormalizeServiceDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("service_date <= $%d", len(args)+1))
		args = append(args, models.NormalizeServiceDate(*filter.DateTo))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM service_events WHERE %s
ORDER BY service_date DESC LIMIT %d`, serviceEventColumns, strings.Join(where, " AND "), limit)

	var events []models.ServiceEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list service events: %w", err)
	}
	return events, nil
}

// RecentOccurrences returns the most recent past occurrences up to the given
// instant, newest first. This is the "expected services" reference set for
// absence streaks.
func (r *ServiceEventRepository) RecentOccurrences(ctx context.Context, upTo time.Time, limit int) ([]models.ServiceEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	query := fmt.Sprintf(`SELECT %s FROM service_events
WHERE service_date <= $1
ORDER BY service_date DESC LIMIT %d`, serviceEventColumns, limit)

	var events []models.ServiceEvent
	if err := r.db.SelectContext(ctx, &events, query, models.NormalizeServiceDate(upTo)); err != nil {
		return nil, fmt.Errorf("recent service occurrences: %w", err)
	}
	return events, nil
}
