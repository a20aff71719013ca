package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comsoc/events-api/internal/middleware"
	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/service"
	"github.com/comsoc/events-api/pkg/response"
)

// TagHandler exposes tag endpoints.
type TagHandler struct {
	tags *service.TagService
	auth *service.AuthService
}

// NewTagHandler constructs handler.
func NewTagHandler(tags *service.TagService, auth *service.AuthService) *TagHandler {
	return &TagHandler{tags: tags, auth: auth}
}

// List godoc
// @Summary List all tags
// @Tags Tags
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tags [get]
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tags, nil)
}

// Events godoc
// @Summary List the events carrying a tag
// @Tags Tags
// @Produce json
// @Param name path string true "Tag name"
// @Success 200 {object} response.Envelope
// @Router /tags/{name}/events [get]
func (h *TagHandler) Events(c *gin.Context) {
	events, err := h.tags.Events(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !h.auth.IsExec(middleware.CurrentUser(c)) {
		published := make([]models.Event, 0, len(events))
		for _, event := range events {
			if !event.Draft {
				published = append(published, event)
			}
		}
		events = published
	}
	response.JSON(c, http.StatusOK, events, nil)
}
