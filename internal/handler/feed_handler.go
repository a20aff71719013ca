package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comsoc/events-api/internal/service"
	"github.com/comsoc/events-api/pkg/response"
)

// FeedHandler serves the public iCalendar feed.
type FeedHandler struct {
	feed *service.FeedService
}

// NewFeedHandler constructs handler.
func NewFeedHandler(feed *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// Feed godoc
// @Summary Subscribe to the published events calendar
// @Tags Feed
// @Produce plain
// @Success 200
// @Router /feed.ics [get]
func (h *FeedHandler) Feed(c *gin.Context) {
	out, err := h.feed.Render(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(out))
}
