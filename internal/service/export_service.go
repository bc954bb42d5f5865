package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
	"github.com/grace-stack/flock-api/pkg/export"
)

type exportRecordLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error)
}

// ExportService renders attendance rows as downloadable CSV or PDF files.
type ExportService struct {
	records exportRecordLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService builds the exporter.
func NewExportService(records exportRecordLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		records: records,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

const exportPageSize = 1000

// AttendanceReport renders all records matching the filter in the requested
// format ("csv" or "pdf"). Rows are fetched in pages to bound memory per
// query; the export itself is assembled in memory, which is fine at
// congregation scale.
func (s *ExportService) AttendanceReport(ctx context.Context, filter models.AttendanceFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	dataset := export.Dataset{
		Headers: []string{"Member", "Email", "Service", "Type", "Date", "Method", "Check-in", "Online", "Notes"},
	}

	filter.Page = 1
	filter.PageSize = exportPageSize
	for {
		rows, total, err := s.records.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance for export")
		}
		for _, row := range rows {
			dataset.Rows = append(dataset.Rows, exportRow(row))
		}
		if filter.Page*filter.PageSize >= total || len(rows) == 0 {
			break
		}
		filter.Page++
	}

	name := "attendance_" + time.Now().UTC().Format("20060102_150405")
	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: name + ".csv", ContentType: "text/csv", Content: content}, nil
	default:
		content, err := s.pdf.Render(dataset, "Attendance Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	}
}

// AbsenceReport renders the flagged-absences list.
func (s *ExportService) AbsenceReport(absences []models.AbsentMember, format string) (*ExportFile, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	dataset := export.Dataset{
		Headers: []string{"Member", "Email", "Phone", "Missed", "Last Attended"},
	}
	for _, a := range absences {
		row := map[string]string{
			"Member": a.FullName,
			"Email":  a.Email,
			"Missed": strconv.Itoa(a.MissedCount),
		}
		if a.Phone != nil {
			row["Phone"] = *a.Phone
		}
		if a.LastAttended != nil {
			row["Last Attended"] = models.DayKey(*a.LastAttended)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	name := "absences_" + time.Now().UTC().Format("20060102_150405")
	if format == "csv" {
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: name + ".csv", ContentType: "text/csv", Content: content}, nil
	}
	content, err := s.pdf.Render(dataset, "Absence Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return &ExportFile{Filename: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
}

func exportRow(row models.AttendanceRecordDetail) map[string]string {
	out := map[string]string{
		"Member":   row.MemberName,
		"Email":    row.MemberEmail,
		"Service":  row.ServiceName,
		"Type":     string(row.ServiceType),
		"Date":     models.DayKey(row.ServiceDate),
		"Method":   string(row.AttendanceType),
		"Check-in": row.CheckInTime.UTC().Format(time.RFC3339),
		"Online":   strconv.FormatBool(row.IsOnline),
	}
	if row.Notes != nil {
		out["Notes"] = *row.Notes
	}
	return out
}
