package termdates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comsoc/events-api/pkg/config"
)

// WeekRecord is one row of the term-dates table for a year: a named
// 7-day interval with the provider's own week number. Term weeks are
// named "Term N, Week M"; vacation weeks carry the vacation name.
type WeekRecord struct {
	Name       string
	Start      time.Time
	End        time.Time
	WeekNumber int
}

// Client fetches week tables from the university term-dates API and
// keeps them for the process lifetime. The cache is an explicit field
// on the client, scoped to its lifetime, rather than package state.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[int][]WeekRecord
}

// NewClient constructs a term-dates client.
func NewClient(cfg config.TermdatesConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		cache:   make(map[int][]WeekRecord),
	}
}

type weekPayload struct {
	Weeks []struct {
		Name       string `json:"name"`
		Start      string `json:"start"`
		End        string `json:"end"`
		WeekNumber int    `json:"weekNumber"`
	} `json:"weeks"`
}

// WeekTable returns the week table for an academic year, fetching it at
// most once per process. Any upstream failure or malformed date makes
// the whole table unavailable; callers treat that as a resolution
// failure, not a crash.
func (c *Client) WeekTable(ctx context.Context, year int) ([]WeekRecord, error) {
	c.mu.Lock()
	if cached, ok := c.cache[year]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s/termdates/%d/weeks?numberingSystem=term", c.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build term-dates request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("term-dates fetch failed", zap.Int("year", year), zap.Error(err))
		return nil, fmt.Errorf("fetch term dates for %d: %w", year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("term-dates API returned %d for year %d", resp.StatusCode, year)
	}

	var payload weekPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode term-dates response: %w", err)
	}

	records := make([]WeekRecord, 0, len(payload.Weeks))
	for _, w := range payload.Weeks {
		start, err := time.Parse("2006-01-02", w.Start)
		if err != nil {
			return nil, fmt.Errorf("malformed week start %q: %w", w.Start, err)
		}
		end, err := time.Parse("2006-01-02", w.End)
		if err != nil {
			return nil, fmt.Errorf("malformed week end %q: %w", w.End, err)
		}
		records = append(records, WeekRecord{
			Name:       w.Name,
			Start:      start,
			End:        end,
			WeekNumber: w.WeekNumber,
		})
	}

	c.mu.Lock()
	c.cache[year] = records
	c.mu.Unlock()

	c.logger.Debug("term-dates table cached", zap.Int("year", year), zap.Int("weeks", len(records)))
	return records, nil
}
