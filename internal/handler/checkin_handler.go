package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
	"github.com/grace-stack/flock-api/pkg/response"
)

type checkinEngine interface {
	SelfCheckIn(ctx context.Context, actor *models.JWTClaims, req service.SelfCheckInRequest) (*models.AttendanceRecord, error)
	ManualCheckIn(ctx context.Context, operator *models.JWTClaims, req service.ManualCheckInRequest) (*models.AttendanceRecord, error)
	OnlineCheckIn(ctx context.Context, req service.OnlineCheckInRequest) (*service.OnlineCheckInResult, error)
	LinkCheckIn(ctx context.Context, actor *models.JWTClaims, token string, notes *string) (*models.AttendanceRecord, error)
}

type historyReader interface {
	MemberHistory(ctx context.Context, memberID string, from, to *time.Time, page, pageSize int) ([]models.AttendanceRecordDetail, *models.Pagination, error)
}

// CheckinHandler exposes the check-in endpoints.
type CheckinHandler struct {
	engine  checkinEngine
	history historyReader
}

// NewCheckinHandler builds a new handler.
func NewCheckinHandler(engine checkinEngine, history historyReader) *CheckinHandler {
	return &CheckinHandler{engine: engine, history: history}
}

// SelfCheckIn godoc
// @Summary Check in to a service
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.SelfCheckInRequest true "Check-in payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/checkin [post]
func (h *CheckinHandler) SelfCheckIn(c *gin.Context) {
	var req service.SelfCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-in payload"))
		return
	}
	record, err := h.engine.SelfCheckIn(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// ManualCheckIn godoc
// @Summary Record attendance for another member
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.ManualCheckInRequest true "Manual check-in payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/manual [post]
func (h *CheckinHandler) ManualCheckIn(c *gin.Context) {
	var req service.ManualCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-in payload"))
		return
	}
	record, err := h.engine.ManualCheckIn(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// OnlineCheckIn godoc
// @Summary Report an online watch session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.OnlineCheckInRequest true "Watch session report"
// @Success 200 {object} response.Envelope
// @Router /attendance/online [post]
func (h *CheckinHandler) OnlineCheckIn(c *gin.Context) {
	var req service.OnlineCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session report"))
		return
	}
	result, err := h.engine.OnlineCheckIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

type linkCheckInRequest struct {
	Notes *string `json:"notes"`
}

// LinkCheckIn godoc
// @Summary Check in through a shared link
// @Tags Attendance
// @Accept json
// @Produce json
// @Param token path string true "Link token"
// @Success 201 {object} response.Envelope
// @Router /attendance/links/{token}/checkin [post]
func (h *CheckinHandler) LinkCheckIn(c *gin.Context) {
	var req linkCheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	record, err := h.engine.LinkCheckIn(c.Request.Context(), claimsFromContext(c), c.Param("token"), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// MyAttendance godoc
// @Summary List my attendance history
// @Tags Attendance
// @Produce json
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance/me [get]
func (h *CheckinHandler) MyAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	from, err := queryDate(c, "date_from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "date_to")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	rows, pagination, err := h.history.MemberHistory(c.Request.Context(), claims.UserID, from, to, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name+", expected YYYY-MM-DD")
	}
	normalized := models.NormalizeServiceDate(date)
	return &normalized, nil
}
