package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comsoc/events-api/internal/models"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// WeekRepository persists academic-calendar weeks.
type WeekRepository struct {
	db *sqlx.DB
}

// NewWeekRepository constructs a week repository.
func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

const weekColumns = `id, academic_year, term, week, start_date, end_date`

// FindCovering returns the week whose date range contains the given
// date, or nil when none does. The unique-week constraint guarantees at
// most one match.
func (r *WeekRepository) FindCovering(ctx context.Context, date time.Time) (*models.Week, error) {
	query := fmt.Sprintf(`SELECT %s FROM weeks WHERE start_date <= $1 AND end_date >= $1`, weekColumns)
	var week models.Week
	if err := r.db.GetContext(ctx, &week, query, dateOnly(date)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find covering week: %w", err)
	}
	return &week, nil
}

// FindByTriple loads a week by its (academic_year, term, week) identity.
func (r *WeekRepository) FindByTriple(ctx context.Context, academicYear, term, week int) (*models.Week, error) {
	query := fmt.Sprintf(`SELECT %s FROM weeks WHERE academic_year = $1 AND term = $2 AND week = $3`, weekColumns)
	var w models.Week
	if err := r.db.GetContext(ctx, &w, query, academicYear, term, week); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find week by triple: %w", err)
	}
	return &w, nil
}

// Insert persists a newly synthesized week. The database unique
// constraint is the final arbiter against concurrent resolution of the
// same interval; a violation surfaces as ErrDuplicateWeek.
func (r *WeekRepository) Insert(ctx context.Context, week *models.Week) error {
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	const query = `INSERT INTO weeks (id, academic_year, term, week, start_date, end_date)
VALUES (:id, :academic_year, :term, :week, :start_date, :end_date)`
	if _, err := r.db.NamedExecContext(ctx, query, week); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrDuplicateWeek.Code, appErrors.ErrDuplicateWeek.Status, appErrors.ErrDuplicateWeek.Message)
		}
		return fmt.Errorf("insert week: %w", err)
	}
	return nil
}

// GarbageCollect deletes every week with no event inside its date
// range. Safe to run at any time; its only effect is reclaiming
// unreferenced rows.
func (r *WeekRepository) GarbageCollect(ctx context.Context) (int64, error) {
	const query = `DELETE FROM weeks w
WHERE NOT EXISTS (
	SELECT 1 FROM events e
	WHERE DATE(e.start_time) BETWEEN w.start_date AND w.end_date
)`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("garbage collect weeks: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("garbage collect weeks: %w", err)
	}
	return deleted, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
