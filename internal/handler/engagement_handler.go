package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
	"github.com/grace-stack/flock-api/pkg/response"
)

type engagementAnalyzer interface {
	Stats(ctx context.Context, startDate, endDate string, serviceType *string) (*models.AttendanceStats, bool, error)
	AbsentMembers(ctx context.Context, missedThreshold, window int) ([]models.AbsentMember, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, *models.Pagination, error)
}

type followUpDispatcher interface {
	Dispatch(ctx context.Context, operator *models.JWTClaims, missedThreshold, window int) (*service.DispatchResult, error)
}

type reportExporter interface {
	AttendanceReport(ctx context.Context, filter models.AttendanceFilter, format string) (*service.ExportFile, error)
	AbsenceReport(absences []models.AbsentMember, format string) (*service.ExportFile, error)
}

const (
	defaultAbsenceThreshold = 3
	defaultAbsenceWindow    = 12
)

// EngagementHandler exposes analytics, absence and export endpoints.
type EngagementHandler struct {
	analyzer  engagementAnalyzer
	followUps followUpDispatcher
	exporter  reportExporter
}

// NewEngagementHandler builds a new handler.
func NewEngagementHandler(analyzer engagementAnalyzer, followUps followUpDispatcher, exporter reportExporter) *EngagementHandler {
	return &EngagementHandler{analyzer: analyzer, followUps: followUps, exporter: exporter}
}

// List godoc
// @Summary List attendance records
// @Tags Analytics
// @Produce json
// @Param member_id query string false "Member id"
// @Param service_type query string false "Service type"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *EngagementHandler) List(c *gin.Context) {
	filter, err := attendanceFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, pagination, err := h.analyzer.List(c.Request.Context(), *filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Stats godoc
// @Summary Aggregate attendance statistics
// @Tags Analytics
// @Produce json
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Param service_type query string false "Service type"
// @Success 200 {object} response.Envelope
// @Router /attendance/analytics [get]
func (h *EngagementHandler) Stats(c *gin.Context) {
	var serviceType *string
	if st := c.Query("service_type"); st != "" {
		serviceType = &st
	}
	stats, cached, err := h.analyzer.Stats(c.Request.Context(), c.Query("start_date"), c.Query("end_date"), serviceType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cached": cached})
}

// Absences godoc
// @Summary List members with absence streaks
// @Tags Analytics
// @Produce json
// @Param threshold query int false "Consecutive misses to flag"
// @Param window query int false "Occurrences to inspect"
// @Success 200 {object} response.Envelope
// @Router /attendance/absences [get]
func (h *EngagementHandler) Absences(c *gin.Context) {
	threshold, window, err := absenceParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	absences, err := h.analyzer.AbsentMembers(c.Request.Context(), threshold, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absences, nil)
}

// DispatchFollowUps godoc
// @Summary Dispatch follow-ups for absent members
// @Tags Analytics
// @Produce json
// @Param threshold query int false "Consecutive misses to flag"
// @Param window query int false "Occurrences to inspect"
// @Success 202 {object} response.Envelope
// @Router /attendance/follow-ups [post]
func (h *EngagementHandler) DispatchFollowUps(c *gin.Context) {
	threshold, window, err := absenceParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.followUps.Dispatch(c.Request.Context(), claimsFromContext(c), threshold, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Export godoc
// @Summary Export attendance records
// @Tags Analytics
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Param report query string false "attendance or absences"
// @Success 200 {file} binary
// @Router /attendance/export [get]
func (h *EngagementHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	var file *service.ExportFile
	if c.Query("report") == "absences" {
		threshold, window, err := absenceParams(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		absences, err := h.analyzer.AbsentMembers(c.Request.Context(), threshold, window)
		if err != nil {
			response.Error(c, err)
			return
		}
		file, err = h.exporter.AbsenceReport(absences, format)
		if err != nil {
			response.Error(c, err)
			return
		}
	} else {
		filter, err := attendanceFilterFromQuery(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		file, err = h.exporter.AttendanceReport(c.Request.Context(), *filter, format)
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func absenceParams(c *gin.Context) (int, int, error) {
	threshold, err := strconv.Atoi(c.DefaultQuery("threshold", strconv.Itoa(defaultAbsenceThreshold)))
	if err != nil || threshold < 1 {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "threshold must be a positive integer")
	}
	window, err := strconv.Atoi(c.DefaultQuery("window", strconv.Itoa(defaultAbsenceWindow)))
	if err != nil || window < 1 {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "window must be a positive integer")
	}
	return threshold, window, nil
}

func attendanceFilterFromQuery(c *gin.Context) (*models.AttendanceFilter, error) {
	from, err := queryDate(c, "date_from")
	if err != nil {
		return nil, err
	}
	to, err := queryDate(c, "date_to")
	if err != nil {
		return nil, err
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filter := &models.AttendanceFilter{
		MemberID:  c.Query("member_id"),
		DateFrom:  from,
		DateTo:    to,
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if st := c.Query("service_type"); st != "" {
		serviceType := models.ServiceType(st)
		if !serviceType.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown service_type")
		}
		filter.ServiceType = &serviceType
	}
	return filter, nil
}
