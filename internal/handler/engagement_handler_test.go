package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/middleware"
	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
)

type engagementAnalyzerMock struct {
	stats    *models.AttendanceStats
	absences []models.AbsentMember
}

func (m *engagementAnalyzerMock) Stats(_ context.Context, _, _ string, _ *string) (*models.AttendanceStats, bool, error) {
	return m.stats, true, nil
}

func (m *engagementAnalyzerMock) AbsentMembers(_ context.Context, _, _ int) ([]models.AbsentMember, error) {
	return m.absences, nil
}

func (m *engagementAnalyzerMock) List(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	return nil, &models.Pagination{Page: 1, PageSize: 50}, nil
}

type followUpMock struct {
	result *service.DispatchResult
}

func (m *followUpMock) Dispatch(_ context.Context, _ *models.JWTClaims, _, _ int) (*service.DispatchResult, error) {
	return m.result, nil
}

type exporterMock struct{}

func (m *exporterMock) AttendanceReport(_ context.Context, _ models.AttendanceFilter, format string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "attendance.csv", ContentType: "text/csv", Content: []byte("Member\n")}, nil
}

func (m *exporterMock) AbsenceReport(_ []models.AbsentMember, _ string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "absences.csv", ContentType: "text/csv", Content: []byte("Member\n")}, nil
}

func TestEngagementHandlerStats(t *testing.T) {
	handler := NewEngagementHandler(&engagementAnalyzerMock{
		stats: &models.AttendanceStats{TotalRecords: 42},
	}, &followUpMock{}, &exporterMock{})
	c, w := testContext(t, http.MethodGet, "/attendance/analytics?start_date=2026-08-01&end_date=2026-08-31", nil)

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), `"cached":true`)
}

func TestEngagementHandlerAbsences(t *testing.T) {
	handler := NewEngagementHandler(&engagementAnalyzerMock{
		absences: []models.AbsentMember{{MemberID: "b", FullName: "Bob", MissedCount: 3}},
	}, &followUpMock{}, &exporterMock{})
	c, w := testContext(t, http.MethodGet, "/attendance/absences?threshold=3", nil)

	handler.Absences(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bob")
}

func TestEngagementHandlerAbsencesBadThreshold(t *testing.T) {
	handler := NewEngagementHandler(&engagementAnalyzerMock{}, &followUpMock{}, &exporterMock{})
	c, w := testContext(t, http.MethodGet, "/attendance/absences?threshold=zero", nil)

	handler.Absences(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEngagementHandlerDispatchFollowUps(t *testing.T) {
	handler := NewEngagementHandler(&engagementAnalyzerMock{}, &followUpMock{
		result: &service.DispatchResult{Enqueued: 2, Flagged: []models.AbsentMember{{MemberID: "a"}, {MemberID: "b"}}},
	}, &exporterMock{})
	c, w := testContext(t, http.MethodPost, "/attendance/follow-ups", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff})

	handler.DispatchFollowUps(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"enqueued":2`)
}

func TestEngagementHandlerExport(t *testing.T) {
	handler := NewEngagementHandler(&engagementAnalyzerMock{}, &followUpMock{}, &exporterMock{})
	c, w := testContext(t, http.MethodGet, "/attendance/export?format=csv", nil)

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance.csv")
}

func TestEngagementHandlerListBadServiceType(t *testing.T) {
	handler := NewEngagementHandler(&engagementAnalyzerMock{}, &followUpMock{}, &exporterMock{})
	c, w := testContext(t, http.MethodGet, "/attendance?service_type=BRUNCH", nil)

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
