package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/middleware"
	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
)

type settingsManagerMock struct {
	settings models.AttendanceSettings
}

func (m *settingsManagerMock) Resolve(_ context.Context) (models.AttendanceSettings, error) {
	return m.settings, nil
}

func (m *settingsManagerMock) Update(_ context.Context, req service.UpdateSettingsRequest, _ *models.JWTClaims) (models.AttendanceSettings, error) {
	updated := m.settings
	if req.WatchThresholdMinutes != nil {
		updated.WatchThresholdMinutes = *req.WatchThresholdMinutes
	}
	return updated, nil
}

func TestSettingsHandlerGet(t *testing.T) {
	handler := NewSettingsHandler(&settingsManagerMock{settings: models.DefaultAttendanceSettings()})
	c, w := testContext(t, http.MethodGet, "/attendance/settings", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "online_watch_threshold_minutes")
}

func TestSettingsHandlerUpdate(t *testing.T) {
	handler := NewSettingsHandler(&settingsManagerMock{settings: models.DefaultAttendanceSettings()})
	threshold := 60
	c, w := testContext(t, http.MethodPut, "/attendance/settings", service.UpdateSettingsRequest{
		WatchThresholdMinutes: &threshold,
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "60")
}

func TestSettingsHandlerUpdateInvalidBody(t *testing.T) {
	handler := NewSettingsHandler(&settingsManagerMock{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/attendance/settings", bytes.NewReader([]byte(`oops`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
