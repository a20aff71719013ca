package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comsoc/events-api/internal/service"
	"github.com/comsoc/events-api/pkg/response"
)

const defaultSearchLimit = 10

// SearchHandler exposes the search endpoint.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Suggest godoc
// @Summary Autocomplete suggestions for the search box
// @Tags Search
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "Maximum number of suggestions"
// @Success 200 {object} response.Envelope
// @Router /search/suggest [get]
func (h *SearchHandler) Suggest(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultSearchLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	names, err := h.search.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names, nil)
}

// Search godoc
// @Summary Search categories, tags and events
// @Tags Search
// @Produce json
// @Param q query string true "Query"
// @Param limit query int false "Maximum number of results"
// @Success 200 {object} response.Envelope
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultSearchLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.search.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}
