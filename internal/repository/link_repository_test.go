package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linkCols = []string{
	"id", "token", "service_type", "service_event_id", "service_name", "service_date",
	"is_active", "expires_at", "created_by", "created_at",
}

func TestLinkRepositoryGetByToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLinkRepository(db)

	serviceDate := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(linkCols).
		AddRow("link-1", "abc123", "SUNDAY", nil, "Sunday Service", serviceDate,
			true, nil, "admin-1", time.Now().UTC())
	mock.ExpectQuery("SELECT (.+) FROM attendance_links WHERE token").
		WithArgs("abc123").
		WillReturnRows(rows)

	link, err := repo.GetByToken(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "link-1", link.ID)
	assert.True(t, link.IsActive)
}

func TestLinkRepositoryGetByTokenNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLinkRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM attendance_links WHERE token").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestLinkRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLinkRepository(db)

	mock.ExpectExec("UPDATE attendance_links SET is_active").
		WithArgs("link-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.Deactivate(context.Background(), "link-1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestLinkRepositoryDeactivateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLinkRepository(db)

	mock.ExpectExec("UPDATE attendance_links SET is_active").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Deactivate(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLinkRepositoryListActiveOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLinkRepository(db)

	serviceDate := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(linkCols).
		AddRow("link-1", "abc123", "SUNDAY", nil, "Sunday Service", serviceDate,
			true, nil, "admin-1", time.Now().UTC())
	mock.ExpectQuery("SELECT (.+) FROM attendance_links WHERE is_active").WillReturnRows(rows)

	links, err := repo.List(context.Background(), true, 10)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "abc123", links[0].Token)
}
