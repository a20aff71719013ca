package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comsoc/events-api/internal/models"
)

type fakeEventSearcher struct {
	byName     []models.Event
	byLocation []models.Event
}

func (f *fakeEventSearcher) SearchByName(_ context.Context, q string, limit int) ([]models.Event, error) {
	return capEvents(filterEvents(f.byName, q, func(e models.Event) string { return e.Name }), limit), nil
}

func (f *fakeEventSearcher) SearchByLocation(_ context.Context, q string, limit int) ([]models.Event, error) {
	return capEvents(filterEvents(f.byLocation, q, func(e models.Event) string { return e.Location }), limit), nil
}

func filterEvents(events []models.Event, q string, field func(models.Event) string) []models.Event {
	var out []models.Event
	for _, e := range events {
		if strings.Contains(strings.ToLower(field(e)), q) {
			out = append(out, e)
		}
	}
	return out
}

func capEvents(events []models.Event, limit int) []models.Event {
	if len(events) > limit {
		return events[:limit]
	}
	return events
}

type fakeTagSearcher struct {
	tags []models.Tag
}

func (f *fakeTagSearcher) Search(_ context.Context, q string, limit int) ([]models.Tag, error) {
	var out []models.Tag
	for _, tag := range f.tags {
		if strings.Contains(tag.Name, q) {
			out = append(out, tag)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestSearchPipelineOrder(t *testing.T) {
	events := &fakeEventSearcher{
		byName:     []models.Event{{ID: "e1", Name: "Gaming Tournament"}},
		byLocation: []models.Event{{ID: "e2", Name: "Quiz", Location: "Gaming Lab"}},
	}
	tags := &fakeTagSearcher{tags: []models.Tag{{ID: "t1", Name: "gaming"}, {ID: "t2", Name: "boardgaming"}}}
	svc := NewSearchService(events, tags)

	results, err := svc.Search(context.Background(), "Gaming", 10)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, "category", results[0].Kind)
	assert.Equal(t, "gaming", results[0].Name)
	assert.Equal(t, "tag", results[1].Kind)
	assert.Equal(t, "tag", results[2].Kind)
	assert.Equal(t, "event", results[3].Kind)
	assert.Equal(t, "Gaming Tournament", results[3].Name)
	assert.Equal(t, "event", results[4].Kind)
	assert.Equal(t, "e2", results[4].Event.ID)
}

func TestSearchDeduplicatesEvents(t *testing.T) {
	shared := models.Event{ID: "e1", Name: "Gaming Night", Location: "Gaming Lab"}
	events := &fakeEventSearcher{byName: []models.Event{shared}, byLocation: []models.Event{shared}}
	svc := NewSearchService(events, &fakeTagSearcher{})

	results, err := svc.Search(context.Background(), "gaming", 10)
	require.NoError(t, err)

	eventCount := 0
	for _, r := range results {
		if r.Kind == "event" {
			eventCount++
		}
	}
	assert.Equal(t, 1, eventCount)
}

func TestSearchHonoursLimit(t *testing.T) {
	tags := &fakeTagSearcher{tags: []models.Tag{
		{ID: "t1", Name: "social"}, {ID: "t2", Name: "socials"}, {ID: "t3", Name: "socialising"},
	}}
	svc := NewSearchService(&fakeEventSearcher{}, tags)

	results, err := svc.Search(context.Background(), "social", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewSearchService(&fakeEventSearcher{}, &fakeTagSearcher{})

	results, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
