package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/termdates"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

type weekStore interface {
	FindCovering(ctx context.Context, date time.Time) (*models.Week, error)
	FindByTriple(ctx context.Context, academicYear, term, week int) (*models.Week, error)
	Insert(ctx context.Context, week *models.Week) error
	GarbageCollect(ctx context.Context) (int64, error)
}

type termTableSource interface {
	WeekTable(ctx context.Context, year int) ([]termdates.WeekRecord, error)
}

// WeekService maps calendar dates onto (academic year, term, week)
// records, synthesizing new weeks on demand from the term-dates API or,
// for years before the API exists, from the historical fallback table.
type WeekService struct {
	store      weekStore
	source     termTableSource
	historical []termdates.HistoricalEntry
	cutoffYear int
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewWeekService constructs the resolver.
func NewWeekService(store weekStore, source termTableSource, cutoffYear int, metrics *MetricsService, logger *zap.Logger) *WeekService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeekService{
		store:      store,
		source:     source,
		historical: termdates.HistoricalTable(),
		cutoffYear: cutoffYear,
		metrics:    metrics,
		logger:     logger,
	}
}

// AcademicYear returns the academic year owning a date: dates before
// September belong to the year that started the previous autumn.
func AcademicYear(date time.Time) int {
	if date.Month() < time.September {
		return date.Year() - 1
	}
	return date.Year()
}

// Derive returns the week covering the date: the persisted one when it
// exists, otherwise a freshly synthesized, not-yet-persisted week
// (empty ID). Synthesis failure is ErrUnresolvableWeek.
func (s *WeekService) Derive(ctx context.Context, date time.Time) (*models.Week, error) {
	existing, err := s.store.FindCovering(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up week")
	}
	if existing != nil {
		s.observeResolution("store")
		return existing, nil
	}

	return s.synthesize(ctx, date)
}

// Resolve is Derive plus persistence: a synthesized week is inserted
// before being returned. A lost race on the unique-week constraint is
// resolved by re-reading whichever row won.
func (s *WeekService) Resolve(ctx context.Context, date time.Time) (*models.Week, error) {
	week, err := s.Derive(ctx, date)
	if err != nil {
		return nil, err
	}
	if week.ID != "" {
		return week, nil
	}

	if err := s.store.Insert(ctx, week); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrDuplicateWeek.Code {
			return s.refetch(ctx, date, week)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist week")
	}
	return week, nil
}

// GarbageCollect removes weeks with no remaining events.
func (s *WeekService) GarbageCollect(ctx context.Context) (int64, error) {
	return s.store.GarbageCollect(ctx)
}

func (s *WeekService) refetch(ctx context.Context, date time.Time, week *models.Week) (*models.Week, error) {
	covering, err := s.store.FindCovering(ctx, date)
	if err == nil && covering != nil {
		return covering, nil
	}
	byTriple, err := s.store.FindByTriple(ctx, week.AcademicYear, week.Term, week.Week)
	if err == nil && byTriple != nil {
		return byTriple, nil
	}
	return nil, appErrors.Clone(appErrors.ErrDuplicateWeek, "")
}

func (s *WeekService) synthesize(ctx context.Context, date time.Time) (*models.Week, error) {
	year := AcademicYear(date)

	if year >= s.cutoffYear {
		week, err := s.fromTermTable(ctx, date, year)
		if err != nil {
			return nil, err
		}
		s.observeResolution("api")
		return week, nil
	}

	week, err := s.fromHistorical(date, year)
	if err != nil {
		return nil, err
	}
	s.observeResolution("historical")
	return week, nil
}

// fromTermTable walks the year's published week table. Term weeks carry
// their (term, week) pair in the name; induction weeks (weekNumber <= 0)
// belong to term 1; anything else is a vacation week that pushes the
// week number past the last term marker via the holiday offset.
func (s *WeekService) fromTermTable(ctx context.Context, date time.Time, year int) (*models.Week, error) {
	table, err := s.source.WeekTable(ctx, year)
	if err != nil {
		s.logger.Warn("week table unavailable", zap.Int("year", year), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnresolvableWeek.Code, appErrors.ErrUnresolvableWeek.Status, appErrors.ErrUnresolvableWeek.Message)
	}

	d := civil(date)
	holidayOffset := 0
	term, week := 0, 0
	haveMarker := false

	for _, rec := range table {
		switch {
		case strings.Contains(rec.Name, "Term"):
			t, w, err := parseTermWeekName(rec.Name)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrUnresolvableWeek.Code, appErrors.ErrUnresolvableWeek.Status, appErrors.ErrUnresolvableWeek.Message)
			}
			holidayOffset = 0
			term, week = t, w
			haveMarker = true
		case rec.WeekNumber <= 0:
			holidayOffset = 0
			term, week = 1, rec.WeekNumber
			haveMarker = true
		default:
			holidayOffset++
		}

		if !d.Before(civil(rec.Start)) && !d.After(civil(rec.End)) {
			if !haveMarker {
				return nil, appErrors.Clone(appErrors.ErrUnresolvableWeek, "")
			}
			return models.NewWeek(year, term, week+holidayOffset, civil(rec.Start)), nil
		}
	}

	return nil, appErrors.Clone(appErrors.ErrUnresolvableWeek, "")
}

// fromHistorical scans the fallback table backwards for the last term
// starting on or before the date. Week numbers are 1-indexed from the
// term start except term 1, which opens with welcome week 0.
func (s *WeekService) fromHistorical(date time.Time, year int) (*models.Week, error) {
	d := civil(date)
	for i := len(s.historical) - 1; i >= 0; i-- {
		entry := s.historical[i]
		if entry.Date.After(d) {
			continue
		}

		days := int(d.Sub(entry.Date).Hours() / 24)
		week := days / 7
		offset := 0
		if entry.Term > 1 {
			week++
			offset = 1
		}
		start := entry.Date.AddDate(0, 0, 7*(week-offset))
		return models.NewWeek(year, entry.Term, week, start), nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnresolvableWeek, "date predates all known term tables")
}

func (s *WeekService) observeResolution(source string) {
	if s.metrics != nil {
		s.metrics.ObserveWeekResolution(source)
	}
}

// parseTermWeekName extracts the (term, week) pair from a name like
// "Term 2, Week 5".
func parseTermWeekName(name string) (int, int, error) {
	parts := strings.SplitN(name, ", ", 2)
	if len(parts) != 2 {
		return 0, 0, errors.New("unexpected term week name: " + name)
	}
	term, err := lastInt(parts[0])
	if err != nil {
		return 0, 0, err
	}
	week, err := lastInt(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return term, week, nil
}

func lastInt(s string) (int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, errors.New("empty name segment")
	}
	return strconv.Atoi(fields[len(fields)-1])
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
