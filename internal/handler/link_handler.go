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

type linkRegistry interface {
	Issue(ctx context.Context, operator *models.JWTClaims, req service.IssueLinkRequest) (*service.IssuedLink, error)
	Resolve(ctx context.Context, token string) (*models.AttendanceLink, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, activeOnly bool, limit int) ([]service.IssuedLink, error)
}

// LinkHandler exposes check-in link management.
type LinkHandler struct {
	service linkRegistry
}

// NewLinkHandler builds a new handler.
func NewLinkHandler(service linkRegistry) *LinkHandler {
	return &LinkHandler{service: service}
}

// Issue godoc
// @Summary Issue a check-in link
// @Tags Links
// @Accept json
// @Produce json
// @Param payload body service.IssueLinkRequest true "Link payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/links [post]
func (h *LinkHandler) Issue(c *gin.Context) {
	var req service.IssueLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid link payload"))
		return
	}
	issued, err := h.service.Issue(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issued)
}

// List godoc
// @Summary List check-in links
// @Tags Links
// @Produce json
// @Param active query bool false "Only active links"
// @Param limit query int false "Max results"
// @Success 200 {object} response.Envelope
// @Router /attendance/links [get]
func (h *LinkHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	links, err := h.service.List(c.Request.Context(), activeOnly, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// Resolve godoc
// @Summary Resolve a link token
// @Tags Links
// @Produce json
// @Param token path string true "Link token"
// @Success 200 {object} response.Envelope
// @Router /attendance/links/{token} [get]
func (h *LinkHandler) Resolve(c *gin.Context) {
	link, err := h.service.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Deactivate godoc
// @Summary Deactivate a check-in link
// @Tags Links
// @Produce json
// @Param id path string true "Link id"
// @Success 204
// @Router /attendance/links/{id} [delete]
func (h *LinkHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
