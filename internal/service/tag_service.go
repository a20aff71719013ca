package service

import (
	"context"
	"strings"

	"github.com/comsoc/events-api/internal/models"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

type tagStore interface {
	List(ctx context.Context) ([]models.Tag, error)
	FindByName(ctx context.Context, name string) (*models.Tag, error)
	Search(ctx context.Context, q string, limit int) ([]models.Tag, error)
	EventIDsForTag(ctx context.Context, name string) ([]string, error)
	GarbageCollect(ctx context.Context) (int64, error)
}

type tagEventLoader interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
}

// TagService serves the tag listing endpoints. Tags are created and
// deleted only as a side effect of event mutations.
type TagService struct {
	tags   tagStore
	events tagEventLoader
}

// NewTagService constructs a tag service.
func NewTagService(tags tagStore, events tagEventLoader) *TagService {
	return &TagService{tags: tags, events: events}
}

// List returns every tag in name order.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

// Events returns the events carrying a tag, published and draft alike.
func (s *TagService) Events(ctx context.Context, name string) ([]models.Event, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	tag, err := s.tags.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "tag not found")
	}

	ids, err := s.tags.EventIDsForTag(ctx, name)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		event, err := s.events.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if event != nil {
			events = append(events, *event)
		}
	}
	return events, nil
}

// GarbageCollect removes tags with no remaining events.
func (s *TagService) GarbageCollect(ctx context.Context) (int64, error) {
	return s.tags.GarbageCollect(ctx)
}
