package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

type checkinEngineMock struct {
	selfErr   error
	onlineRes *service.OnlineCheckInResult
	linkErr   error
}

func (m *checkinEngineMock) SelfCheckIn(_ context.Context, actor *models.JWTClaims, req service.SelfCheckInRequest) (*models.AttendanceRecord, error) {
	if m.selfErr != nil {
		return nil, m.selfErr
	}
	return &models.AttendanceRecord{ID: "rec-1", MemberID: actor.UserID, ServiceName: req.ServiceName}, nil
}

func (m *checkinEngineMock) ManualCheckIn(_ context.Context, operator *models.JWTClaims, req service.ManualCheckInRequest) (*models.AttendanceRecord, error) {
	return &models.AttendanceRecord{ID: "rec-2", MemberID: req.TargetMemberID, CreatedBy: operator.UserID}, nil
}

func (m *checkinEngineMock) OnlineCheckIn(_ context.Context, _ service.OnlineCheckInRequest) (*service.OnlineCheckInResult, error) {
	return m.onlineRes, nil
}

func (m *checkinEngineMock) LinkCheckIn(_ context.Context, actor *models.JWTClaims, _ string, _ *string) (*models.AttendanceRecord, error) {
	if m.linkErr != nil {
		return nil, m.linkErr
	}
	return &models.AttendanceRecord{ID: "rec-3", MemberID: actor.UserID}, nil
}

type historyReaderMock struct {
	rows []models.AttendanceRecordDetail
}

func (m *historyReaderMock) MemberHistory(_ context.Context, _ string, _, _ *time.Time, page, pageSize int) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	return m.rows, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(m.rows)}, nil
}

func testContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestCheckinHandlerSelf(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{}, &historyReaderMock{})
	c, w := testContext(t, http.MethodPost, "/attendance/checkin", service.SelfCheckInRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "member-1", Role: models.RoleMember})

	handler.SelfCheckIn(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "rec-1")
}

func TestCheckinHandlerSelfDuplicate(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{selfErr: appErrors.ErrDuplicateAttendance}, &historyReaderMock{})
	c, w := testContext(t, http.MethodPost, "/attendance/checkin", service.SelfCheckInRequest{
		ServiceType: "SUNDAY",
		ServiceName: "Sunday Service",
		ServiceDate: "2026-08-23",
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "member-1", Role: models.RoleMember})

	handler.SelfCheckIn(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_ATTENDANCE")
}

func TestCheckinHandlerSelfInvalidBody(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{}, &historyReaderMock{})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/attendance/checkin", bytes.NewReader([]byte(`not-json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.SelfCheckIn(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinHandlerOnlineSoftAccept(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{onlineRes: &service.OnlineCheckInResult{Recorded: false}}, &historyReaderMock{})
	c, w := testContext(t, http.MethodPost, "/attendance/online", service.OnlineCheckInRequest{
		MemberID:      "member-1",
		ServiceName:   "Sunday Livestream",
		ServiceDate:   "2026-08-23",
		WatchDuration: 60,
	})

	handler.OnlineCheckIn(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recorded":false`)
}

func TestCheckinHandlerLinkExpired(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{linkErr: appErrors.ErrLinkExpired}, &historyReaderMock{})
	c, w := testContext(t, http.MethodPost, "/attendance/links/tok/checkin", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "member-1", Role: models.RoleMember})

	handler.LinkCheckIn(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LINK_EXPIRED")
}

func TestCheckinHandlerMyAttendance(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{}, &historyReaderMock{
		rows: []models.AttendanceRecordDetail{{
			AttendanceRecord: models.AttendanceRecord{ID: "rec-1", MemberID: "member-1"},
			MemberName:       "Jane Smith",
		}},
	})
	c, w := testContext(t, http.MethodGet, "/attendance/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "member-1", Role: models.RoleMember})

	handler.MyAttendance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Smith")
	assert.Contains(t, w.Body.String(), "pagination")
}

func TestCheckinHandlerMyAttendanceUnauthorized(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{}, &historyReaderMock{})
	c, w := testContext(t, http.MethodGet, "/attendance/me", nil)

	handler.MyAttendance(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckinHandlerMyAttendanceBadDate(t *testing.T) {
	handler := NewCheckinHandler(&checkinEngineMock{}, &historyReaderMock{})
	c, w := testContext(t, http.MethodGet, "/attendance/me?date_from=23-08-2026", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "member-1", Role: models.RoleMember})

	handler.MyAttendance(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
