package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

func sampleDetail(member, email string) models.AttendanceRecordDetail {
	notes := "front row"
	return models.AttendanceRecordDetail{
		AttendanceRecord: models.AttendanceRecord{
			ID:             "rec-1",
			MemberID:       "member-1",
			ServiceType:    models.ServiceTypeSunday,
			ServiceDate:    time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
			ServiceName:    "Sunday Service",
			AttendanceType: models.AttendanceTypeSelf,
			CheckInTime:    time.Date(2026, 8, 23, 9, 55, 0, 0, time.UTC),
			Notes:          &notes,
		},
		MemberName:  member,
		MemberEmail: email,
	}
}

func TestExportAttendanceCSV(t *testing.T) {
	repo := &analyticsRepoMock{
		rows:  []models.AttendanceRecordDetail{sampleDetail("Jane Smith", "jane@example.com")},
		total: 1,
	}
	svc := NewExportService(repo, nil)

	file, err := svc.AttendanceReport(context.Background(), models.AttendanceFilter{}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	content := string(file.Content)
	assert.Contains(t, content, "Jane Smith")
	assert.Contains(t, content, "2026-08-23")
	assert.Contains(t, content, "SELF_CHECKIN")
}

func TestExportAttendancePDF(t *testing.T) {
	repo := &analyticsRepoMock{
		rows:  []models.AttendanceRecordDetail{sampleDetail("Jane Smith", "jane@example.com")},
		total: 1,
	}
	svc := NewExportService(repo, nil)

	file, err := svc.AttendanceReport(context.Background(), models.AttendanceFilter{}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&analyticsRepoMock{}, nil)

	_, err := svc.AttendanceReport(context.Background(), models.AttendanceFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportAbsenceReport(t *testing.T) {
	svc := NewExportService(&analyticsRepoMock{}, nil)

	last := time.Date(2026, 8, 9, 0, 0, 0, 0, time.UTC)
	file, err := svc.AbsenceReport([]models.AbsentMember{
		{MemberID: "b", FullName: "Bob", Email: "bob@example.com", MissedCount: 2, LastAttended: &last},
	}, "csv")
	require.NoError(t, err)

	content := string(file.Content)
	assert.Contains(t, content, "Bob")
	assert.Contains(t, content, "2026-08-09")
}
