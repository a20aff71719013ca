package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/termdates"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

type fakeWeekStore struct {
	mu      sync.Mutex
	weeks   []*models.Week
	inserts int

	// duplicateOnce makes the next insert lose the unique-week race:
	// raceWinner is committed as the winning row and ErrDuplicateWeek
	// returned.
	duplicateOnce bool
	raceWinner    *models.Week
}

func (f *fakeWeekStore) FindCovering(_ context.Context, date time.Time) (*models.Week, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.weeks {
		if w.Covers(date) {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWeekStore) FindByTriple(_ context.Context, year, term, week int) (*models.Week, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.weeks {
		if w.AcademicYear == year && w.Term == term && w.Week == week {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeWeekStore) Insert(_ context.Context, week *models.Week) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.duplicateOnce {
		f.duplicateOnce = false
		if f.raceWinner != nil {
			f.weeks = append(f.weeks, f.raceWinner)
		}
		return appErrors.Clone(appErrors.ErrDuplicateWeek, "")
	}
	week.ID = "week-" + week.StartDate.Format("20060102")
	f.weeks = append(f.weeks, week)
	return nil
}

func (f *fakeWeekStore) GarbageCollect(context.Context) (int64, error) {
	return 0, nil
}

type fakeTermSource struct {
	tables map[int][]termdates.WeekRecord
	err    error
	calls  int
}

func (f *fakeTermSource) WeekTable(_ context.Context, year int) ([]termdates.WeekRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[year], nil
}

func day(year int, month time.Month, dom int) time.Time {
	return time.Date(year, month, dom, 0, 0, 0, 0, time.UTC)
}

func record(name string, weekNumber int, start time.Time) termdates.WeekRecord {
	return termdates.WeekRecord{
		Name:       name,
		WeekNumber: weekNumber,
		Start:      start,
		End:        start.AddDate(0, 0, 6),
	}
}

func newTestWeekService(store *fakeWeekStore, source *fakeTermSource) *WeekService {
	return NewWeekService(store, source, 2006, nil, nil)
}

func TestAcademicYear(t *testing.T) {
	assert.Equal(t, 2024, AcademicYear(day(2024, time.September, 1)))
	assert.Equal(t, 2024, AcademicYear(day(2024, time.December, 31)))
	assert.Equal(t, 2024, AcademicYear(day(2025, time.January, 1)))
	assert.Equal(t, 2024, AcademicYear(day(2025, time.August, 31)))
	assert.Equal(t, 2025, AcademicYear(day(2025, time.September, 1)))
}

func TestResolveParsesTermWeekName(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {
			record("Term 2, Week 4", 16, day(2025, time.January, 20)),
			record("Term 2, Week 5", 17, day(2025, time.January, 27)),
		},
	}}
	store := &fakeWeekStore{}
	svc := newTestWeekService(store, source)

	week, err := svc.Resolve(context.Background(), day(2025, time.January, 29))
	require.NoError(t, err)

	assert.Equal(t, 2024, week.AcademicYear)
	assert.Equal(t, 2, week.Term)
	assert.Equal(t, 5, week.Week)
	assert.Equal(t, day(2025, time.January, 27), week.StartDate)
	assert.Equal(t, week.StartDate.AddDate(0, 0, 6), week.EndDate)
	assert.NotEmpty(t, week.ID)
}

func TestResolveVacationWeekExtendsLastTerm(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {
			record("Term 1, Week 10", 10, day(2024, time.December, 2)),
			record("Christmas vacation, week 1", 11, day(2024, time.December, 9)),
			record("Christmas vacation, week 2", 12, day(2024, time.December, 16)),
		},
	}}
	svc := newTestWeekService(&fakeWeekStore{}, source)

	week, err := svc.Resolve(context.Background(), day(2024, time.December, 18))
	require.NoError(t, err)

	assert.Equal(t, 1, week.Term)
	assert.Equal(t, 12, week.Week)
	assert.Equal(t, day(2024, time.December, 16), week.StartDate)
}

func TestResolveInductionWeekKeepsZeroNumbering(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {
			record("Induction week", 0, day(2024, time.September, 23)),
			record("Term 1, Week 1", 1, day(2024, time.September, 30)),
		},
	}}
	svc := newTestWeekService(&fakeWeekStore{}, source)

	week, err := svc.Resolve(context.Background(), day(2024, time.September, 25))
	require.NoError(t, err)

	assert.Equal(t, 1, week.Term)
	assert.Equal(t, 0, week.Week)
}

func TestResolveMalformedTermName(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {record("Term time", 1, day(2024, time.September, 30))},
	}}
	svc := newTestWeekService(&fakeWeekStore{}, source)

	_, err := svc.Resolve(context.Background(), day(2024, time.October, 1))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnresolvableWeek.Code, appErr.Code)
}

func TestResolveSourceUnreachable(t *testing.T) {
	source := &fakeTermSource{err: errors.New("connection refused")}
	svc := newTestWeekService(&fakeWeekStore{}, source)

	_, err := svc.Resolve(context.Background(), day(2024, time.October, 1))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnresolvableWeek.Code, appErr.Code)
}

func TestResolveUncoveredDate(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {record("Term 1, Week 1", 1, day(2024, time.September, 30))},
	}}
	svc := newTestWeekService(&fakeWeekStore{}, source)

	_, err := svc.Resolve(context.Background(), day(2025, time.August, 1))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnresolvableWeek.Code, appErr.Code)
}

func TestResolvePrefersStoredWeek(t *testing.T) {
	stored := models.NewWeek(2024, 2, 5, day(2025, time.January, 27))
	stored.ID = "existing"
	store := &fakeWeekStore{weeks: []*models.Week{stored}}
	source := &fakeTermSource{}
	svc := newTestWeekService(store, source)

	week, err := svc.Resolve(context.Background(), day(2025, time.January, 30))
	require.NoError(t, err)

	assert.Equal(t, "existing", week.ID)
	assert.Zero(t, source.calls)
	assert.Zero(t, store.inserts)
}

func TestResolveIsIdempotent(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {record("Term 2, Week 5", 17, day(2025, time.January, 27))},
	}}
	store := &fakeWeekStore{}
	svc := newTestWeekService(store, source)

	first, err := svc.Resolve(context.Background(), day(2025, time.January, 28))
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), day(2025, time.January, 31))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.inserts)
	assert.Equal(t, 1, source.calls)
}

func TestResolveDuplicateInsertRace(t *testing.T) {
	winner := models.NewWeek(2024, 2, 5, day(2025, time.January, 27))
	winner.ID = "winner"
	store := &fakeWeekStore{duplicateOnce: true, raceWinner: winner}
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {record("Term 2, Week 5", 17, day(2025, time.January, 27))},
	}}
	svc := newTestWeekService(store, source)

	week, err := svc.Resolve(context.Background(), day(2025, time.January, 28))
	require.NoError(t, err)
	assert.Equal(t, "winner", week.ID)
}

func TestResolveHistoricalTermOne(t *testing.T) {
	// 2003-10-02 is ten days after the published 2003 term 1 start.
	svc := newTestWeekService(&fakeWeekStore{}, &fakeTermSource{})

	week, err := svc.Resolve(context.Background(), day(2003, time.October, 2))
	require.NoError(t, err)

	assert.Equal(t, 2003, week.AcademicYear)
	assert.Equal(t, 1, week.Term)
	assert.Equal(t, 1, week.Week)
	assert.Equal(t, day(2003, time.September, 29), week.StartDate)
	assert.Equal(t, week.StartDate.AddDate(0, 0, 6), week.EndDate)
}

func TestResolveHistoricalLaterTermsAreOneIndexed(t *testing.T) {
	var entry *termdates.HistoricalEntry
	for _, e := range termdates.HistoricalTable() {
		if e.Term == 2 {
			entry = &e
			break
		}
	}
	require.NotNil(t, entry)

	svc := newTestWeekService(&fakeWeekStore{}, &fakeTermSource{})
	week, err := svc.Resolve(context.Background(), entry.Date.AddDate(0, 0, 3))
	require.NoError(t, err)

	assert.Equal(t, 2, week.Term)
	assert.Equal(t, 1, week.Week)
	assert.Equal(t, entry.Date, week.StartDate)
}

func TestResolvePredatesHistoricalTable(t *testing.T) {
	svc := newTestWeekService(&fakeWeekStore{}, &fakeTermSource{})

	_, err := svc.Resolve(context.Background(), day(1990, time.March, 1))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnresolvableWeek.Code, appErr.Code)
}

func TestDeriveDoesNotPersist(t *testing.T) {
	source := &fakeTermSource{tables: map[int][]termdates.WeekRecord{
		2024: {record("Term 2, Week 5", 17, day(2025, time.January, 27))},
	}}
	store := &fakeWeekStore{}
	svc := newTestWeekService(store, source)

	week, err := svc.Derive(context.Background(), day(2025, time.January, 28))
	require.NoError(t, err)
	assert.Empty(t, week.ID)
	assert.Zero(t, store.inserts)
}

func TestParseTermWeekName(t *testing.T) {
	term, week, err := parseTermWeekName("Term 2, Week 5")
	require.NoError(t, err)
	assert.Equal(t, 2, term)
	assert.Equal(t, 5, week)

	_, _, err = parseTermWeekName("Term 2 Week 5")
	assert.Error(t, err)

	_, _, err = parseTermWeekName("Term two, Week five")
	assert.Error(t, err)
}
