package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/internal/service"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
	"github.com/grace-stack/flock-api/pkg/response"
)

type settingsManager interface {
	Resolve(ctx context.Context) (models.AttendanceSettings, error)
	Update(ctx context.Context, req service.UpdateSettingsRequest, actor *models.JWTClaims) (models.AttendanceSettings, error)
}

// SettingsHandler exposes the attendance settings endpoints.
type SettingsHandler struct {
	service settingsManager
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(service settingsManager) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Get attendance settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Resolve(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update attendance settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
