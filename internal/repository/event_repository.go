package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comsoc/events-api/internal/models"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

// EventRepository persists events together with their derived week and
// tag associations.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// eventRow carries an event joined against its covering week.
type eventRow struct {
	models.Event
	WeekID    sql.NullString `db:"week_id"`
	WeekYear  sql.NullInt64  `db:"week_year"`
	WeekTerm  sql.NullInt64  `db:"week_term"`
	WeekNum   sql.NullInt64  `db:"week_num"`
	WeekStart sql.NullTime   `db:"week_start"`
	WeekEnd   sql.NullTime   `db:"week_end"`
}

const eventSelect = `SELECT e.id, e.name, e.slug, e.description, e.draft, e.location, e.location_url,
	e.icon, e.colour, e.start_time, e.end_time, e.created_at, e.updated_at,
	w.id AS week_id, w.academic_year AS week_year, w.term AS week_term, w.week AS week_num,
	w.start_date AS week_start, w.end_date AS week_end
FROM events e
LEFT JOIN weeks w ON DATE(e.start_time) BETWEEN w.start_date AND w.end_date`

func (row *eventRow) toEvent() models.Event {
	event := row.Event
	if row.WeekID.Valid {
		event.Week = &models.Week{
			ID:           row.WeekID.String,
			AcademicYear: int(row.WeekYear.Int64),
			Term:         int(row.WeekTerm.Int64),
			Week:         int(row.WeekNum.Int64),
			StartDate:    row.WeekStart.Time,
			EndDate:      row.WeekEnd.Time,
		}
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}
	return event
}

// List returns events for a year, optionally narrowed to a term and
// week, ordered by start time.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	conditions := []string{"w.academic_year = $1"}
	args := []interface{}{filter.AcademicYear}
	if filter.Term != nil {
		conditions = append(conditions, fmt.Sprintf("w.term = $%d", len(args)+1))
		args = append(args, *filter.Term)
	}
	if filter.Week != nil {
		conditions = append(conditions, fmt.Sprintf("w.week = $%d", len(args)+1))
		args = append(args, *filter.Week)
	}
	if !filter.IncludeDrafts {
		conditions = append(conditions, "e.draft = FALSE")
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY e.start_time, e.end_time, e.name", eventSelect, strings.Join(conditions, " AND "))
	return r.selectEvents(ctx, query, args...)
}

// GetByID fetches a single event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := eventSelect + " WHERE e.id = $1"
	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	event := row.toEvent()
	if err := r.loadTags(ctx, []*models.Event{&event}); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetBySlug fetches the event with the given slug inside one week.
func (r *EventRepository) GetBySlug(ctx context.Context, academicYear, term, week int, slug string) (*models.Event, error) {
	query := eventSelect + ` WHERE w.academic_year = $1 AND w.term = $2 AND w.week = $3 AND e.slug = $4`
	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, academicYear, term, week, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	event := row.toEvent()
	if err := r.loadTags(ctx, []*models.Event{&event}); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListFrom returns events starting on or after the given date.
func (r *EventRepository) ListFrom(ctx context.Context, from time.Time, includeDrafts bool) ([]models.Event, error) {
	query := eventSelect + " WHERE DATE(e.start_time) >= $1"
	if !includeDrafts {
		query += " AND e.draft = FALSE"
	}
	query += " ORDER BY e.start_time, e.end_time, e.name"
	return r.selectEvents(ctx, query, dateOnly(from))
}

// ListBefore returns events starting strictly before the given date.
func (r *EventRepository) ListBefore(ctx context.Context, before time.Time, includeDrafts bool) ([]models.Event, error) {
	query := eventSelect + " WHERE DATE(e.start_time) < $1"
	if !includeDrafts {
		query += " AND e.draft = FALSE"
	}
	query += " ORDER BY e.start_time, e.end_time, e.name"
	return r.selectEvents(ctx, query, dateOnly(before))
}

// ListWeekRange returns published events for an inclusive week span of
// one term, for printable exports.
func (r *EventRepository) ListWeekRange(ctx context.Context, academicYear, term, fromWeek, toWeek int) ([]models.Event, error) {
	query := eventSelect + ` WHERE w.academic_year = $1 AND w.term = $2 AND w.week BETWEEN $3 AND $4 AND e.draft = FALSE
ORDER BY e.start_time, e.end_time, e.name`
	return r.selectEvents(ctx, query, academicYear, term, fromWeek, toWeek)
}

// SearchByName finds published events whose name matches the query,
// closest to now first.
func (r *EventRepository) SearchByName(ctx context.Context, q string, limit int) ([]models.Event, error) {
	query := eventSelect + ` WHERE e.name ILIKE $1 AND e.draft = FALSE
ORDER BY ABS(EXTRACT(EPOCH FROM (e.start_time - NOW()))) LIMIT $2`
	return r.selectEvents(ctx, query, "%"+q+"%", limit)
}

// SearchByLocation finds published events whose location matches the
// query, closest to now first.
func (r *EventRepository) SearchByLocation(ctx context.Context, q string, limit int) ([]models.Event, error) {
	query := eventSelect + ` WHERE e.location ILIKE $1 AND e.draft = FALSE
ORDER BY ABS(EXTRACT(EPOCH FROM (e.start_time - NOW()))) LIMIT $2`
	return r.selectEvents(ctx, query, "%"+q+"%", limit)
}

// CreateEventParams bundles everything one event mutation persists.
type CreateEventParams struct {
	Event *models.Event
	// Week is the resolved owning week; inserted as part of the same
	// transaction when not yet persisted (empty ID).
	Week *models.Week
	Tags []string
}

// Create persists an event, its owning week when new, and its tags in a
// single transaction. A unique-week race surfaces as ErrDuplicateWeek
// so the caller can re-resolve and retry; a slug collision inside the
// week surfaces as ErrDuplicateSlug.
func (r *EventRepository) Create(ctx context.Context, params CreateEventParams) error {
	event, week := params.Event, params.Week

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create event tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if week.ID == "" {
		if err := insertWeekTx(ctx, tx, week); err != nil {
			return err
		}
	}

	taken, err := slugTakenTx(ctx, tx, event.Slug, week, "")
	if err != nil {
		return err
	}
	if taken {
		return appErrors.Clone(appErrors.ErrDuplicateSlug,
			fmt.Sprintf("an event named %q already exists in %d t%d w%d", event.Slug, week.AcademicYear, week.Term, week.Week))
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, name, slug, description, draft, location, location_url, icon, colour, start_time, end_time, created_at, updated_at)
VALUES (:id, :name, :slug, :description, :draft, :location, :location_url, :icon, :colour, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err := replaceTagsTx(ctx, tx, event.ID, params.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create event tx: %w", err)
	}

	event.Week = week
	event.Tags = params.Tags
	return nil
}

// UpdateEventParams bundles an event update. ReplaceTags is nil when
// the tag set is unchanged.
type UpdateEventParams struct {
	Event       *models.Event
	Week        *models.Week
	ReplaceTags *[]string
}

// Update rewrites an event row and, when its start time moved, its
// owning week, in a single transaction.
func (r *EventRepository) Update(ctx context.Context, params UpdateEventParams) error {
	event, week := params.Event, params.Week

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update event tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if week.ID == "" {
		if err := insertWeekTx(ctx, tx, week); err != nil {
			return err
		}
	}

	taken, err := slugTakenTx(ctx, tx, event.Slug, week, event.ID)
	if err != nil {
		return err
	}
	if taken {
		return appErrors.Clone(appErrors.ErrDuplicateSlug,
			fmt.Sprintf("an event named %q already exists in %d t%d w%d", event.Slug, week.AcademicYear, week.Term, week.Week))
	}

	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET name = :name, slug = :slug, description = :description, draft = :draft,
location = :location, location_url = :location_url, icon = :icon, colour = :colour,
start_time = :start_time, end_time = :end_time, updated_at = :updated_at
WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if params.ReplaceTags != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_tags WHERE event_id = $1`, event.ID); err != nil {
			return fmt.Errorf("clear event tags: %w", err)
		}
		if err := replaceTagsTx(ctx, tx, event.ID, *params.ReplaceTags); err != nil {
			return err
		}
		event.Tags = *params.ReplaceTags
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update event tx: %w", err)
	}

	event.Week = week
	return nil
}

// Delete removes an event. Returns false when no row matched.
func (r *EventRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}
	return affected > 0, nil
}

// DeleteMany removes a set of events, for batch-create rollback.
func (r *EventRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

func (r *EventRepository) selectEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]models.Event, len(rows))
	refs := make([]*models.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEvent()
		refs[i] = &events[i]
	}
	if err := r.loadTags(ctx, refs); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) loadTags(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	byID := make(map[string]*models.Event, len(events))
	for i, e := range events {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	const query = `SELECT et.event_id, t.name FROM event_tags et
JOIN tags t ON t.id = et.tag_id
WHERE et.event_id = ANY($1)
ORDER BY t.name`
	var rows []struct {
		EventID string `db:"event_id"`
		Name    string `db:"name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load event tags: %w", err)
	}
	for _, row := range rows {
		if e, ok := byID[row.EventID]; ok {
			e.Tags = append(e.Tags, row.Name)
		}
	}
	return nil
}

func insertWeekTx(ctx context.Context, tx *sqlx.Tx, week *models.Week) error {
	week.ID = uuid.NewString()
	const query = `INSERT INTO weeks (id, academic_year, term, week, start_date, end_date)
VALUES (:id, :academic_year, :term, :week, :start_date, :end_date)`
	if _, err := tx.NamedExecContext(ctx, query, week); err != nil {
		week.ID = ""
		if isUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrDuplicateWeek.Code, appErrors.ErrDuplicateWeek.Status, appErrors.ErrDuplicateWeek.Message)
		}
		return fmt.Errorf("insert week: %w", err)
	}
	return nil
}

func slugTakenTx(ctx context.Context, tx *sqlx.Tx, slug string, week *models.Week, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND DATE(start_time) BETWEEN $2 AND $3`
	args := []interface{}{slug, week.StartDate, week.EndDate}
	if excludeID != "" {
		query += ` AND id <> $4`
		args = append(args, excludeID)
	}
	query += `)`

	var taken bool
	if err := tx.GetContext(ctx, &taken, query, args...); err != nil {
		return false, fmt.Errorf("check slug uniqueness: %w", err)
	}
	return taken, nil
}

func replaceTagsTx(ctx context.Context, tx *sqlx.Tx, eventID string, tags []string) error {
	for _, name := range tags {
		var tagID string
		const upsert = `INSERT INTO tags (id, name) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
		if err := tx.GetContext(ctx, &tagID, upsert, uuid.NewString(), name); err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}
		const link = `INSERT INTO event_tags (event_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.ExecContext(ctx, link, eventID, tagID); err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}
