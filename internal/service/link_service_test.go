package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type linkRepoMock struct {
	stored      []*models.AttendanceLink
	byToken     *models.AttendanceLink
	byTokenErr  error
	deactivated bool
	deactivErr  error
}

func (m *linkRepoMock) Insert(_ context.Context, link *models.AttendanceLink) (*models.AttendanceLink, error) {
	stored := *link
	stored.ID = "link-1"
	m.stored = append(m.stored, &stored)
	return &stored, nil
}

func (m *linkRepoMock) GetByToken(_ context.Context, token string) (*models.AttendanceLink, error) {
	if m.byTokenErr != nil {
		return nil, m.byTokenErr
	}
	if m.byToken != nil {
		return m.byToken, nil
	}
	for _, l := range m.stored {
		if l.Token == token {
			return l, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *linkRepoMock) Deactivate(_ context.Context, _ string) (bool, error) {
	return m.deactivated, m.deactivErr
}

func (m *linkRepoMock) List(_ context.Context, _ bool, _ int) ([]models.AttendanceLink, error) {
	out := make([]models.AttendanceLink, 0, len(m.stored))
	for _, l := range m.stored {
		out = append(out, *l)
	}
	return out, nil
}

func newLinkFixture(repo *linkRepoMock, defaultTTL time.Duration) *LinkService {
	svc := NewLinkService(repo, "https://flock.example.org", defaultTTL, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC) }
	return svc
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestLinkServiceIssue(t *testing.T) {
	repo := &linkRepoMock{}
	svc := newLinkFixture(repo, 0)

	issued, err := svc.Issue(context.Background(), adminClaims(), IssueLinkRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
	})
	require.NoError(t, err)
	assert.Len(t, issued.Link.Token, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", issued.Link.Token)
	assert.True(t, issued.Link.IsActive)
	assert.Nil(t, issued.Link.ExpiresAt)
	assert.Equal(t, "admin-1", issued.Link.CreatedBy)
	assert.Equal(t, "https://flock.example.org/checkin/"+issued.Link.Token, issued.CheckinURL)
}

func TestLinkServiceIssueAppliesDefaultTTL(t *testing.T) {
	repo := &linkRepoMock{}
	svc := newLinkFixture(repo, 72*time.Hour)

	issued, err := svc.Issue(context.Background(), adminClaims(), IssueLinkRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
	})
	require.NoError(t, err)
	require.NotNil(t, issued.Link.ExpiresAt)
	assert.Equal(t, time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC), issued.Link.ExpiresAt.UTC())
}

func TestLinkServiceIssueRejectsPastExpiry(t *testing.T) {
	svc := newLinkFixture(&linkRepoMock{}, 0)

	past := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
	_, err := svc.Issue(context.Background(), adminClaims(), IssueLinkRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
		ExpiresAt:   &past,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLinkServiceIssueResolveRoundTrip(t *testing.T) {
	repo := &linkRepoMock{}
	svc := newLinkFixture(repo, 0)

	issued, err := svc.Issue(context.Background(), adminClaims(), IssueLinkRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), issued.Link.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.Link.ServiceType, resolved.ServiceType)
	assert.Equal(t, issued.Link.ServiceName, resolved.ServiceName)
	assert.True(t, issued.Link.ServiceDate.Equal(resolved.ServiceDate))
}

func TestLinkServiceResolveMultiUse(t *testing.T) {
	link := &models.AttendanceLink{
		ID:          "link-1",
		Token:       "tok",
		ServiceType: models.ServiceTypeSunday,
		ServiceName: "Sunday Service",
		ServiceDate: time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}
	svc := newLinkFixture(&linkRepoMock{byToken: link}, 0)

	// resolving must never consume the link
	for i := 0; i < 3; i++ {
		resolved, err := svc.Resolve(context.Background(), "tok")
		require.NoError(t, err)
		assert.True(t, resolved.IsActive)
	}
}

func TestLinkServiceResolveExpiredBeatsInactive(t *testing.T) {
	expired := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
	link := &models.AttendanceLink{
		Token:     "tok",
		IsActive:  false,
		ExpiresAt: &expired,
	}
	svc := newLinkFixture(&linkRepoMock{byToken: link}, 0)

	_, err := svc.Resolve(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLinkExpired.Code, appErrors.FromError(err).Code)
}

func TestLinkServiceResolveNotFound(t *testing.T) {
	svc := newLinkFixture(&linkRepoMock{byTokenErr: sql.ErrNoRows}, 0)

	_, err := svc.Resolve(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLinkNotFound.Code, appErrors.FromError(err).Code)
}

func TestLinkServiceDeactivateMissing(t *testing.T) {
	svc := newLinkFixture(&linkRepoMock{deactivated: false}, 0)

	err := svc.Deactivate(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
