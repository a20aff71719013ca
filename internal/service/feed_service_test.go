package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comsoc/events-api/internal/models"
)

type fakeFeedLister struct {
	events []models.Event
	drafts bool
}

func (f *fakeFeedLister) ListFrom(_ context.Context, _ time.Time, includeDrafts bool) ([]models.Event, error) {
	f.drafts = includeDrafts
	return f.events, nil
}

func TestFeedRender(t *testing.T) {
	end := time.Date(2025, time.January, 29, 20, 0, 0, 0, time.UTC)
	colour := "gaming"
	lister := &fakeFeedLister{events: []models.Event{
		{
			ID:          "e1",
			Name:        "Board Games Night",
			Slug:        "board-games-night",
			Description: "Bring snacks",
			Location:    "MB0.01",
			Colour:      &colour,
			StartTime:   time.Date(2025, time.January, 29, 18, 0, 0, 0, time.UTC),
			EndTime:     &end,
			Week:        models.NewWeek(2024, 2, 5, time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC)),
		},
		{
			ID:        "e2",
			Name:      "Pub Quiz",
			Slug:      "pub-quiz",
			Location:  "The Duck",
			StartTime: time.Date(2025, time.February, 3, 19, 0, 0, 0, time.UTC),
		},
	}}

	svc := NewFeedService(lister, "Society Events", "-//comsoc//events-api//EN", time.UTC)
	out, err := svc.Render(context.Background())
	require.NoError(t, err)

	assert.False(t, lister.drafts)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Board Games Night")
	assert.Contains(t, out, "SUMMARY:Pub Quiz")
	assert.Contains(t, out, "LOCATION:MB0.01")
	assert.Contains(t, out, "board-games-night-2024-t2-w5@events.comsoc")
	assert.Contains(t, out, "COLOR:#3D53FF")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "END:VCALENDAR"))
}

func TestFeedUIDStableWithoutWeek(t *testing.T) {
	event := &models.Event{ID: "e9", Slug: "pub-quiz"}
	assert.Equal(t, "e9@events.comsoc", feedUID(event))
}

func TestColourHex(t *testing.T) {
	assert.Equal(t, "#3D53FF", ColourHex("gaming"))
	assert.Equal(t, "#3D53FF", ColourHex(" Gaming "))
	assert.Equal(t, "#ee4f4f", ColourHex("ee4f4f"))
	assert.Equal(t, "#ee4f4f", ColourHex("#EE4F4F"))
}
