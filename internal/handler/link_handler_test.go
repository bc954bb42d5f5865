package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/middleware"
	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type linkRegistryMock struct {
	resolveRes *models.AttendanceLink
	resolveErr error
	deactivErr error
}

func (m *linkRegistryMock) Issue(_ context.Context, operator *models.JWTClaims, req service.IssueLinkRequest) (*service.IssuedLink, error) {
	link := &models.AttendanceLink{
		ID:          "link-1",
		Token:       "tok",
		ServiceType: models.ServiceType(req.ServiceType),
		ServiceName: req.ServiceName,
		IsActive:    true,
		CreatedBy:   operator.UserID,
	}
	return &service.IssuedLink{Link: link, CheckinURL: "https://flock.example.org/checkin/tok"}, nil
}

func (m *linkRegistryMock) Resolve(_ context.Context, _ string) (*models.AttendanceLink, error) {
	return m.resolveRes, m.resolveErr
}

func (m *linkRegistryMock) Deactivate(_ context.Context, _ string) error {
	return m.deactivErr
}

func (m *linkRegistryMock) List(_ context.Context, _ bool, _ int) ([]service.IssuedLink, error) {
	return []service.IssuedLink{}, nil
}

func TestLinkHandlerIssue(t *testing.T) {
	handler := NewLinkHandler(&linkRegistryMock{})
	c, w := testContext(t, http.MethodPost, "/attendance/links", service.IssueLinkRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Issue(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "checkin_url")
}

func TestLinkHandlerResolve(t *testing.T) {
	expires := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	handler := NewLinkHandler(&linkRegistryMock{resolveRes: &models.AttendanceLink{
		ID:        "link-1",
		Token:     "tok",
		IsActive:  true,
		ExpiresAt: &expires,
	}})
	c, w := testContext(t, http.MethodGet, "/attendance/links/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Resolve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "link-1")
}

func TestLinkHandlerResolveExpired(t *testing.T) {
	handler := NewLinkHandler(&linkRegistryMock{resolveErr: appErrors.ErrLinkExpired})
	c, w := testContext(t, http.MethodGet, "/attendance/links/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.Resolve(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LINK_EXPIRED")
}

func TestLinkHandlerDeactivateMissing(t *testing.T) {
	handler := NewLinkHandler(&linkRegistryMock{deactivErr: appErrors.Clone(appErrors.ErrNotFound, "link not found")})
	c, w := testContext(t, http.MethodDelete, "/attendance/links/ghost", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Deactivate(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLinkHandlerDeactivate(t *testing.T) {
	handler := NewLinkHandler(&linkRegistryMock{})
	c, w := testContext(t, http.MethodDelete, "/attendance/links/link-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "link-1"}}

	handler.Deactivate(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}
