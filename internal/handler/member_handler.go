package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/pkg/response"
)

type memberDirectory interface {
	Get(ctx context.Context, id string) (*models.Member, error)
	List(ctx context.Context, filter models.MemberFilter) ([]models.Member, *models.Pagination, error)
}

// MemberHandler exposes the read-only member directory.
type MemberHandler struct {
	service memberDirectory
}

// NewMemberHandler builds a new handler.
func NewMemberHandler(service memberDirectory) *MemberHandler {
	return &MemberHandler{service: service}
}

// List godoc
// @Summary List members
// @Tags Members
// @Produce json
// @Param search query string false "Name or email search"
// @Param role query string false "Role filter"
// @Param active query bool false "Active filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filter := models.MemberFilter{
		Search:    c.Query("search"),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if role := c.Query("role"); role != "" {
		r := models.MemberRole(role)
		filter.Role = &r
	}
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}

	members, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, pagination)
}

// Get godoc
// @Summary Get member by id
// @Tags Members
// @Produce json
// @Param id path string true "Member id"
// @Success 200 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}
