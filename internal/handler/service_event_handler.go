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

type calendarManager interface {
	Schedule(ctx context.Context, operator *models.JWTClaims, req service.ScheduleServiceRequest) (*models.ServiceEvent, error)
	List(ctx context.Context, filter models.ServiceEventFilter) ([]models.ServiceEvent, error)
}

// ServiceEventHandler exposes the service calendar endpoints.
type ServiceEventHandler struct {
	service calendarManager
}

// NewServiceEventHandler builds a new handler.
func NewServiceEventHandler(service calendarManager) *ServiceEventHandler {
	return &ServiceEventHandler{service: service}
}

// Schedule godoc
// @Summary Schedule a service occurrence
// @Tags Services
// @Accept json
// @Produce json
// @Param payload body service.ScheduleServiceRequest true "Service payload"
// @Success 201 {object} response.Envelope
// @Router /services [post]
func (h *ServiceEventHandler) Schedule(c *gin.Context) {
	var req service.ScheduleServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid service payload"))
		return
	}
	event, err := h.service.Schedule(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// List godoc
// @Summary List service occurrences
// @Tags Services
// @Produce json
// @Param service_type query string false "Service type"
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Max results"
// @Success 200 {object} response.Envelope
// @Router /services [get]
func (h *ServiceEventHandler) List(c *gin.Context) {
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
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	filter := models.ServiceEventFilter{DateFrom: from, DateTo: to, Limit: limit}
	if st := c.Query("service_type"); st != "" {
		serviceType := models.ServiceType(st)
		if !serviceType.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown service_type"))
			return
		}
		filter.ServiceType = &serviceType
	}

	events, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}
