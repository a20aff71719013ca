package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comsoc/events-api/internal/dto"
	"github.com/comsoc/events-api/internal/middleware"
	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/service"
	appErrors "github.com/comsoc/events-api/pkg/errors"
	"github.com/comsoc/events-api/pkg/markdown"
	"github.com/comsoc/events-api/pkg/response"
)

// EventHandler exposes the event endpoints.
type EventHandler struct {
	events   *service.EventService
	exports  *service.ExportService
	auth     *service.AuthService
	markdown *markdown.Renderer
}

// NewEventHandler constructs handler.
func NewEventHandler(events *service.EventService, exports *service.ExportService, auth *service.AuthService) *EventHandler {
	return &EventHandler{
		events:   events,
		exports:  exports,
		auth:     auth,
		markdown: markdown.New(),
	}
}

// eventPayload is an event enriched with the rendered description.
type eventPayload struct {
	models.Event
	DescriptionHTML string `json:"description_html,omitempty"`
}

func (h *EventHandler) payload(event models.Event) eventPayload {
	p := eventPayload{Event: event}
	if html, err := h.markdown.Render(event.Description); err == nil {
		p.DescriptionHTML = html
	}
	return p
}

func (h *EventHandler) payloads(events []models.Event) []eventPayload {
	out := make([]eventPayload, len(events))
	for i, event := range events {
		out[i] = h.payload(event)
	}
	return out
}

// includeDrafts reports whether the caller may see draft events.
func (h *EventHandler) includeDrafts(c *gin.Context) bool {
	return h.auth.IsExec(middleware.CurrentUser(c))
}

// List godoc
// @Summary List events for an academic year
// @Tags Events
// @Produce json
// @Param year query int false "Academic year, defaults to the current one"
// @Param term query int false "Term number"
// @Param week query int false "Week number"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	now := time.Now().In(h.events.Location())
	year, err := intQuery(c, "year", service.AcademicYear(now))
	if err != nil {
		response.Error(c, err)
		return
	}
	term, err := optionalIntQuery(c, "term")
	if err != nil {
		response.Error(c, err)
		return
	}
	week, err := optionalIntQuery(c, "week")
	if err != nil {
		response.Error(c, err)
		return
	}

	events, err := h.events.List(c.Request.Context(), models.EventFilter{
		AcademicYear:  year,
		Term:          term,
		Week:          week,
		IncludeDrafts: h.includeDrafts(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.payloads(events), nil)
}

// Upcoming godoc
// @Summary List events from the start of the current week onwards
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/upcoming [get]
func (h *EventHandler) Upcoming(c *gin.Context) {
	events, err := h.events.Upcoming(c.Request.Context(), h.includeDrafts(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.payloads(events), nil)
}

// Previous godoc
// @Summary List events before the current week
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events/previous [get]
func (h *EventHandler) Previous(c *gin.Context) {
	events, err := h.events.Previous(c.Request.Context(), h.includeDrafts(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.payloads(events), nil)
}

// Get godoc
// @Summary Fetch a single event
// @Tags Events
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if event.Draft && !h.includeDrafts(c) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "event not found"))
		return
	}
	response.JSON(c, http.StatusOK, h.payload(*event), nil)
}

// WeekEvents godoc
// @Summary List the events of one week
// @Tags Events
// @Produce json
// @Param year path int true "Academic year"
// @Param term path int true "Term number"
// @Param week path int true "Week number"
// @Success 200 {object} response.Envelope
// @Router /weeks/{year}/{term}/{week}/events [get]
func (h *EventHandler) WeekEvents(c *gin.Context) {
	year, term, week, err := weekAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.events.List(c.Request.Context(), models.EventFilter{
		AcademicYear:  year,
		Term:          &term,
		Week:          &week,
		IncludeDrafts: h.includeDrafts(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.payloads(events), nil)
}

// GetBySlug godoc
// @Summary Fetch an event by its week address and slug
// @Tags Events
// @Produce json
// @Param year path int true "Academic year"
// @Param term path int true "Term number"
// @Param week path int true "Week number"
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Envelope
// @Router /weeks/{year}/{term}/{week}/events/{slug} [get]
func (h *EventHandler) GetBySlug(c *gin.Context) {
	year, term, week, err := weekAddress(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.events.GetBySlug(c.Request.Context(), year, term, week, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if event.Draft && !h.includeDrafts(c) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "event not found"))
		return
	}
	response.JSON(c, http.StatusOK, h.payload(*event), nil)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.payload(*event))
}

// CreateBatch godoc
// @Summary Create one event per start time
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body dto.BatchCreateEventRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /events/batch [post]
func (h *EventHandler) CreateBatch(c *gin.Context) {
	var req dto.BatchCreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	events, err := h.events.CreateBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, h.payloads(events))
}

// Update godoc
// @Summary Partially update an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Param payload body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.payload(*event), nil)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Param id path string true "Event id"
// @Success 204
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a week range as CSV or PDF
// @Tags Events
// @Produce octet-stream
// @Param year query int true "Academic year"
// @Param term query int true "Term number"
// @Param from_week query int true "First week"
// @Param to_week query int true "Last week"
// @Param format query string false "csv or pdf"
// @Success 200
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	year, err := intQuery(c, "year", 0)
	if err != nil || year == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year is required"))
		return
	}
	term, err := intQuery(c, "term", 0)
	if err != nil || term == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term is required"))
		return
	}
	fromWeek, err := optionalIntQuery(c, "from_week")
	if err != nil || fromWeek == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from_week is required"))
		return
	}
	toWeek, err := optionalIntQuery(c, "to_week")
	if err != nil || toWeek == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to_week is required"))
		return
	}

	result, err := h.exports.WeekRange(c.Request.Context(), year, term, *fromWeek, *toWeek, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func weekAddress(c *gin.Context) (int, int, int, error) {
	year, err := intParam(c, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	term, err := intParam(c, "term")
	if err != nil {
		return 0, 0, 0, err
	}
	week, err := intParam(c, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	return year, term, week, nil
}
