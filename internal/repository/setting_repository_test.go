package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/models"
)

func TestSettingRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	rows := sqlmock.NewRows([]string{"key", "value", "type", "description", "updated_by", "updated_at"}).
		AddRow("online_watch_threshold_minutes", "45", "INTEGER", nil, nil, time.Now()).
		AddRow("enable_self_checkin", "false", "BOOLEAN", nil, nil, time.Now())
	mock.ExpectQuery("SELECT key, value").WillReturnRows(rows)

	result, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "45", result[0].Value)
}

func TestSettingRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingRepository(db)

	updatedBy := "admin-1"
	mock.ExpectExec("INSERT INTO attendance_settings").
		WithArgs("enable_qr_checkin", "false", "BOOLEAN", nil, "admin-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.Setting{
		Key:       "enable_qr_checkin",
		Value:     "false",
		Type:      models.SettingTypeBoolean,
		UpdatedBy: &updatedBy,
	})
	require.NoError(t, err)
}
