package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/comsoc/events-api/internal/dto"
	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/repository"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

const upcomingCacheKey = "events:upcoming"

type eventStore interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetBySlug(ctx context.Context, academicYear, term, week int, slug string) (*models.Event, error)
	ListFrom(ctx context.Context, from time.Time, includeDrafts bool) ([]models.Event, error)
	ListBefore(ctx context.Context, before time.Time, includeDrafts bool) ([]models.Event, error)
	ListWeekRange(ctx context.Context, academicYear, term, fromWeek, toWeek int) ([]models.Event, error)
	Create(ctx context.Context, params repository.CreateEventParams) error
	Update(ctx context.Context, params repository.UpdateEventParams) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteMany(ctx context.Context, ids []string) error
}

type weekResolver interface {
	Derive(ctx context.Context, date time.Time) (*models.Week, error)
	GarbageCollect(ctx context.Context) (int64, error)
}

type tagJanitor interface {
	GarbageCollect(ctx context.Context) (int64, error)
}

// EventService owns the event lifecycle: parsing and validating
// payloads, deriving the owning week from the start time, and cleaning
// up weeks and tags that mutations orphan.
type EventService struct {
	events   eventStore
	weeks    weekResolver
	tags     tagJanitor
	cache    *CacheService
	validate *validator.Validate
	location *time.Location
	logger   *zap.Logger
}

// NewEventService constructs an event service. All event times are
// civil times in the given location.
func NewEventService(events eventStore, weeks weekResolver, tags tagJanitor, cache *CacheService, location *time.Location, logger *zap.Logger) *EventService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:   events,
		weeks:    weeks,
		tags:     tags,
		cache:    cache,
		validate: validator.New(),
		location: location,
		logger:   logger,
	}
}

// Slugify derives the URL slug for an event name.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Create validates and persists a new event, inserting its owning week
// when the week does not exist yet.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	start, end, err := s.parseEventTimes(req.StartTime, req.EndTime, req.Duration)
	if err != nil {
		return nil, err
	}
	colour, err := colourPtr(req.Colour)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:        strings.TrimSpace(req.Name),
		Slug:        Slugify(req.Name),
		Description: req.Description,
		Draft:       req.Draft,
		Location:    strings.TrimSpace(req.Location),
		LocationURL: req.LocationURL,
		Icon:        lowerPtr(req.Icon),
		Colour:      colour,
		StartTime:   start,
		EndTime:     end,
	}

	if err := s.persist(ctx, event, normaliseTags(req.Tags), nil); err != nil {
		return nil, err
	}

	s.cache.InvalidatePattern(ctx, "events:*")
	s.logger.Info("event created", zap.String("id", event.ID), zap.String("slug", event.Slug))
	return event, nil
}

// CreateBatch creates one event per start time, sharing every other
// field. The batch is atomic: any failure deletes the events already
// created and sweeps the weeks and tags they introduced.
func (s *EventService) CreateBatch(ctx context.Context, req dto.BatchCreateEventRequest) ([]models.Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if len(req.EndTimes) != 0 && len(req.EndTimes) != len(req.StartTimes) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_times must match start_times in length")
	}
	colour, err := colourPtr(req.Colour)
	if err != nil {
		return nil, err
	}

	tags := normaliseTags(req.Tags)
	created := make([]models.Event, 0, len(req.StartTimes))
	createdIDs := make([]string, 0, len(req.StartTimes))

	for i, rawStart := range req.StartTimes {
		rawEnd := ""
		if len(req.EndTimes) != 0 {
			rawEnd = req.EndTimes[i]
		}
		start, end, err := s.parseEventTimes(rawStart, rawEnd, req.Duration)
		if err != nil {
			s.rollbackBatch(ctx, createdIDs)
			return nil, err
		}

		event := &models.Event{
			Name:        strings.TrimSpace(req.Name),
			Slug:        Slugify(req.Name),
			Description: req.Description,
			Draft:       req.Draft,
			Location:    strings.TrimSpace(req.Location),
			LocationURL: req.LocationURL,
			Icon:        lowerPtr(req.Icon),
			Colour:      colour,
			StartTime:   start,
			EndTime:     end,
		}
		if err := s.persist(ctx, event, tags, nil); err != nil {
			s.rollbackBatch(ctx, createdIDs)
			return nil, err
		}
		created = append(created, *event)
		createdIDs = append(createdIDs, event.ID)
	}

	s.cache.InvalidatePattern(ctx, "events:*")
	s.logger.Info("event batch created", zap.Int("count", len(created)))
	return created, nil
}

// Update applies a partial update. Absent fields keep their stored
// value; nullable fields accept an explicit null to clear. Moving the
// start time re-homes the event to the week covering the new date.
func (s *EventService) Update(ctx context.Context, id string, req dto.UpdateEventRequest) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}

	replaceTags, err := s.applyUpdate(event, req)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, event, nil, &updateExtras{replaceTags: replaceTags}); err != nil {
		return nil, err
	}

	s.collectOrphans(ctx)
	s.cache.InvalidatePattern(ctx, "events:*")
	s.logger.Info("event updated", zap.String("id", event.ID), zap.String("slug", event.Slug))
	return event, nil
}

// Delete removes an event and sweeps any week or tag it orphaned.
func (s *EventService) Delete(ctx context.Context, id string) error {
	found, err := s.events.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}

	s.collectOrphans(ctx)
	s.cache.InvalidatePattern(ctx, "events:*")
	s.logger.Info("event deleted", zap.String("id", id))
	return nil
}

// Get fetches one event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return event, nil
}

// GetBySlug fetches the event addressed by its week and slug.
func (s *EventService) GetBySlug(ctx context.Context, academicYear, term, week int, slug string) (*models.Event, error) {
	event, err := s.events.GetBySlug(ctx, academicYear, term, week, slug)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return event, nil
}

// List returns events for an academic year, optionally narrowed to a
// term and week.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	return s.events.List(ctx, filter)
}

// Upcoming returns events from the start of the current week onwards.
// When the current week cannot be resolved the cutoff falls back to
// today, so a term-dates outage never blanks the calendar.
func (s *EventService) Upcoming(ctx context.Context, includeDrafts bool) ([]models.Event, error) {
	if !includeDrafts {
		var cached []models.Event
		if s.cache.Get(ctx, upcomingCacheKey, &cached) {
			return cached, nil
		}
	}

	events, err := s.events.ListFrom(ctx, s.weekCutoff(ctx), includeDrafts)
	if err != nil {
		return nil, err
	}

	if !includeDrafts {
		s.cache.Set(ctx, upcomingCacheKey, events)
	}
	return events, nil
}

// Previous returns events before the start of the current week.
func (s *EventService) Previous(ctx context.Context, includeDrafts bool) ([]models.Event, error) {
	return s.events.ListBefore(ctx, s.weekCutoff(ctx), includeDrafts)
}

// ListWeekRange returns published events for a span of weeks in one
// term, for the printable timetable export.
func (s *EventService) ListWeekRange(ctx context.Context, academicYear, term, fromWeek, toWeek int) ([]models.Event, error) {
	if fromWeek > toWeek {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from_week cannot be after to_week")
	}
	return s.events.ListWeekRange(ctx, academicYear, term, fromWeek, toWeek)
}

// Location exposes the configured civil timezone.
func (s *EventService) Location() *time.Location {
	return s.location
}

type updateExtras struct {
	replaceTags *[]string
}

// persist derives the owning week and writes the event. When the week
// insert loses the unique-constraint race the resolution is retried
// once, which then finds the winning row.
func (s *EventService) persist(ctx context.Context, event *models.Event, tags []string, extras *updateExtras) error {
	for attempt := 0; ; attempt++ {
		week, err := s.weeks.Derive(ctx, event.StartTime)
		if err != nil {
			return err
		}

		if extras != nil {
			err = s.events.Update(ctx, repository.UpdateEventParams{Event: event, Week: week, ReplaceTags: extras.replaceTags})
		} else {
			err = s.events.Create(ctx, repository.CreateEventParams{Event: event, Week: week, Tags: tags})
		}
		if err == nil {
			return nil
		}
		if attempt == 0 && isDuplicateWeek(err) {
			s.logger.Debug("lost week insert race, re-resolving", zap.Time("start", event.StartTime))
			continue
		}
		return err
	}
}

func (s *EventService) rollbackBatch(ctx context.Context, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := s.events.DeleteMany(ctx, ids); err != nil {
		s.logger.Error("batch rollback failed", zap.Strings("ids", ids), zap.Error(err))
		return
	}
	s.collectOrphans(ctx)
}

func (s *EventService) collectOrphans(ctx context.Context) {
	if _, err := s.weeks.GarbageCollect(ctx); err != nil {
		s.logger.Warn("week sweep failed", zap.Error(err))
	}
	if _, err := s.tags.GarbageCollect(ctx); err != nil {
		s.logger.Warn("tag sweep failed", zap.Error(err))
	}
}

// weekCutoff is the start of the week covering today, or today itself
// when the week cannot be resolved.
func (s *EventService) weekCutoff(ctx context.Context) time.Time {
	now := time.Now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	week, err := s.weeks.Derive(ctx, today)
	if err != nil {
		return today
	}
	return week.StartDate
}

// applyUpdate folds the partial-update payload into the stored event
// and returns the replacement tag set, nil when tags are untouched.
func (s *EventService) applyUpdate(event *models.Event, req dto.UpdateEventRequest) (*[]string, error) {
	if req.Name.Set {
		if !req.Name.Valid || strings.TrimSpace(req.Name.Value) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
		}
		event.Name = strings.TrimSpace(req.Name.Value)
		event.Slug = Slugify(req.Name.Value)
	}
	if req.Description.Set {
		if !req.Description.Valid {
			return nil, appErrors.Clone(appErrors.ErrValidation, "description cannot be null")
		}
		event.Description = req.Description.Value
	}
	if req.Draft.Set {
		if !req.Draft.Valid {
			return nil, appErrors.Clone(appErrors.ErrValidation, "draft cannot be null")
		}
		event.Draft = req.Draft.Value
	}
	if req.Location.Set {
		if !req.Location.Valid || strings.TrimSpace(req.Location.Value) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "location cannot be empty")
		}
		event.Location = strings.TrimSpace(req.Location.Value)
	}
	if req.LocationURL.Set {
		event.LocationURL = req.LocationURL.Ptr()
	}
	if req.Icon.Set {
		event.Icon = lowerPtr(req.Icon.Ptr())
	}
	if req.Colour.Set {
		colour, err := colourPtr(req.Colour.Ptr())
		if err != nil {
			return nil, err
		}
		event.Colour = colour
	}

	if req.StartTime.Set {
		if !req.StartTime.Valid {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start_time cannot be null")
		}
		start, err := s.parseTime(req.StartTime.Value)
		if err != nil {
			return nil, err
		}
		event.StartTime = start
	}
	if req.EndTime.Set {
		if req.EndTime.Valid {
			end, err := s.parseTime(req.EndTime.Value)
			if err != nil {
				return nil, err
			}
			event.EndTime = &end
		} else {
			event.EndTime = nil
		}
	}
	if req.Duration.Set && req.Duration.Valid {
		dur, err := parseEventDuration(req.Duration.Value)
		if err != nil {
			return nil, err
		}
		derived := event.StartTime.Add(dur)
		// The stored end time counts too: changing an event's length
		// takes an explicit end_time, or a null to clear it first.
		if event.EndTime != nil && !event.EndTime.Equal(derived) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_time does not match duration")
		}
		event.EndTime = &derived
	}
	if event.EndTime != nil && event.EndTime.Before(event.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time cannot be before start_time")
	}

	var replaceTags *[]string
	if req.Tags.Set {
		tags := []string{}
		if req.Tags.Valid {
			tags = normaliseTags(req.Tags.Value)
		}
		replaceTags = &tags
	}
	return replaceTags, nil
}

// parseEventTimes parses the start, and derives the end from either the
// explicit end time or the duration. When both are given they must
// agree.
func (s *EventService) parseEventTimes(rawStart, rawEnd, rawDuration string) (time.Time, *time.Time, error) {
	start, err := s.parseTime(rawStart)
	if err != nil {
		return time.Time{}, nil, err
	}

	var end *time.Time
	if rawEnd != "" {
		t, err := s.parseTime(rawEnd)
		if err != nil {
			return time.Time{}, nil, err
		}
		end = &t
	}
	if rawDuration != "" {
		dur, err := parseEventDuration(rawDuration)
		if err != nil {
			return time.Time{}, nil, err
		}
		derived := start.Add(dur)
		if end != nil && !end.Equal(derived) {
			return time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "end_time does not match duration")
		}
		end = &derived
	}
	if end != nil && end.Before(start) {
		return time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "end_time cannot be before start_time")
	}
	return start, end, nil
}

func (s *EventService) parseTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.TimeLayout, raw, s.location)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidDate,
			fmt.Sprintf("invalid time %q, expected %s", raw, dto.TimeLayout))
	}
	return t, nil
}

// parseEventDuration parses the "days:hours:minutes" wire format.
func parseEventDuration(raw string) (time.Duration, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, appErrors.Clone(appErrors.ErrInvalidDate,
			fmt.Sprintf("invalid duration %q, expected days:hours:minutes", raw))
	}
	values := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return 0, appErrors.Clone(appErrors.ErrInvalidDate,
				fmt.Sprintf("invalid duration %q, expected days:hours:minutes", raw))
		}
		values[i] = v
	}
	return time.Duration(values[0])*24*time.Hour +
		time.Duration(values[1])*time.Hour +
		time.Duration(values[2])*time.Minute, nil
}

func normaliseTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// colourPtr normalises a submitted colour, rejecting anything that is
// neither a palette name nor a hex code.
func colourPtr(raw *string) (*string, error) {
	c := lowerPtr(raw)
	if c == nil {
		return nil, nil
	}
	if !ColourValid(*c) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unknown colour %q, expected a hex code or one of: %s", *c, strings.Join(ColourNames(), ", ")))
	}
	return c, nil
}

func lowerPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	if v == "" {
		return nil
	}
	return &v
}

func isDuplicateWeek(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Code == appErrors.ErrDuplicateWeek.Code
}
