package service

import (
	"context"
	"strings"

	"github.com/comsoc/events-api/internal/models"
)

// Fixed event categories surfaced ahead of tags in search results.
var searchCategories = []string{"gaming", "academic", "social", "inclusivity", "tech"}

type eventSearcher interface {
	SearchByName(ctx context.Context, q string, limit int) ([]models.Event, error)
	SearchByLocation(ctx context.Context, q string, limit int) ([]models.Event, error)
}

type tagSearcher interface {
	Search(ctx context.Context, q string, limit int) ([]models.Tag, error)
}

// SearchResult is one typed search hit.
type SearchResult struct {
	Kind  string        `json:"kind"`
	Name  string        `json:"name"`
	Event *models.Event `json:"event,omitempty"`
}

// SearchService answers the search box: categories first, then tags,
// then events by name, then events by location, deduplicated and capped
// at the requested limit.
type SearchService struct {
	events eventSearcher
	tags   tagSearcher
}

// NewSearchService constructs a search service.
func NewSearchService(events eventSearcher, tags tagSearcher) *SearchService {
	return &SearchService{events: events, tags: tags}
}

// Suggest returns just the matching names, for the search box
// autocomplete.
func (s *SearchService) Suggest(ctx context.Context, q string, limit int) ([]string, error) {
	results, err := s.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names, nil
}

// Search runs the full pipeline for a query.
func (s *SearchService) Search(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" || limit <= 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, limit)
	seen := make(map[string]struct{})

	add := func(r SearchResult) bool {
		key := r.Kind + ":" + r.Name
		if r.Event != nil {
			key = r.Kind + ":" + r.Event.ID
		}
		if _, ok := seen[key]; ok {
			return len(results) < limit
		}
		seen[key] = struct{}{}
		results = append(results, r)
		return len(results) < limit
	}

	for _, category := range searchCategories {
		if strings.Contains(category, q) {
			if !add(SearchResult{Kind: "category", Name: category}) {
				return results, nil
			}
		}
	}

	tags, err := s.tags.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if !add(SearchResult{Kind: "tag", Name: tag.Name}) {
			return results, nil
		}
	}

	byName, err := s.events.SearchByName(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	for i := range byName {
		if !add(SearchResult{Kind: "event", Name: byName[i].Name, Event: &byName[i]}) {
			return results, nil
		}
	}

	byLocation, err := s.events.SearchByLocation(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	for i := range byLocation {
		if !add(SearchResult{Kind: "event", Name: byLocation[i].Name, Event: &byLocation[i]}) {
			return results, nil
		}
	}

	return results, nil
}
