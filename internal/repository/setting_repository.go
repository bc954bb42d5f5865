package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/grace-stack/flock-api/internal/models"
)

// SettingRepository handles the attendance settings key/value table.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// List returns all persisted settings.
func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	query := `SELECT key, value, type, description, updated_by, updated_at
FROM attendance_settings ORDER BY key`
	var rows []models.Setting
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return rows, nil
}

// Get fetches a single setting. sql.ErrNoRows passes through.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query := `SELECT key, value, type, description, updated_by, updated_at
FROM attendance_settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes a setting value.
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	setting.UpdatedAt = time.Now().UTC()
	query := `INSERT INTO attendance_settings (key, value, type, description, updated_by, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		setting.Key, setting.Value, setting.Type, setting.Description, setting.UpdatedBy, setting.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert setting %s: %w", setting.Key, err)
	}
	return nil
}
