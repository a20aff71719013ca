package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/comsoc/events-api/internal/models"
)

// How far back the feed reaches, so subscribers keep recently finished
// events on their calendars.
const feedLookback = 90 * 24 * time.Hour

type feedEventLister interface {
	ListFrom(ctx context.Context, from time.Time, includeDrafts bool) ([]models.Event, error)
}

// FeedService renders the public iCalendar feed of published events.
type FeedService struct {
	events   feedEventLister
	name     string
	prodID   string
	location *time.Location
}

// NewFeedService constructs a feed service.
func NewFeedService(events feedEventLister, name, prodID string, location *time.Location) *FeedService {
	if location == nil {
		location = time.UTC
	}
	return &FeedService{events: events, name: name, prodID: prodID, location: location}
}

// Render serializes the feed. Draft events never appear.
func (s *FeedService) Render(ctx context.Context) (string, error) {
	from := time.Now().In(s.location).Add(-feedLookback)
	events, err := s.events.ListFrom(ctx, from, false)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(s.prodID)
	cal.SetName(s.name)
	cal.SetXWRCalName(s.name)

	now := time.Now().UTC()
	for i := range events {
		event := &events[i]
		ve := cal.AddEvent(feedUID(event))
		ve.SetDtStampTime(now)
		ve.SetCreatedTime(event.CreatedAt)
		ve.SetModifiedAt(event.UpdatedAt)
		ve.SetSummary(event.Name)
		ve.SetLocation(event.Location)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.LocationURL != nil {
			ve.SetURL(*event.LocationURL)
		}
		if event.Colour != nil {
			ve.SetProperty(ical.ComponentProperty("COLOR"), ColourHex(*event.Colour))
		}

		ve.SetStartAt(event.StartTime)
		if event.EndTime != nil {
			ve.SetEndAt(*event.EndTime)
		} else {
			ve.SetEndAt(event.StartTime.Add(time.Hour))
		}
	}

	return cal.Serialize(), nil
}

// feedUID builds a stable VEVENT identifier from the event's week
// address, so re-renders do not duplicate entries in subscribers'
// calendars.
func feedUID(event *models.Event) string {
	if event.Week != nil {
		return fmt.Sprintf("%s-%d-t%d-w%d@events.comsoc", event.Slug, event.Week.AcademicYear, event.Week.Term, event.Week.Week)
	}
	return event.ID + "@events.comsoc"
}
