package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comsoc/events-api/internal/models"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWeekRepositoryFindCovering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWeekRepository(db)
	start := time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "academic_year", "term", "week", "start_date", "end_date"}).
		AddRow("w1", 2024, 2, 5, start, start.AddDate(0, 0, 6))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, academic_year, term, week, start_date, end_date FROM weeks WHERE start_date <= $1 AND end_date >= $1")).
		WithArgs(time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(rows)

	week, err := repo.FindCovering(context.Background(), time.Date(2025, time.January, 29, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, week)
	assert.Equal(t, "w1", week.ID)
	assert.Equal(t, 5, week.Week)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryFindCoveringNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWeekRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, academic_year, term, week, start_date, end_date FROM weeks")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "academic_year", "term", "week", "start_date", "end_date"}))

	week, err := repo.FindCovering(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, week)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWeekRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weeks")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	week := models.NewWeek(2024, 2, 5, time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Insert(context.Background(), week))
	assert.NotEmpty(t, week.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryInsertDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWeekRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weeks")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_week"})

	week := models.NewWeek(2024, 2, 5, time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC))
	err := repo.Insert(context.Background(), week)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDuplicateWeek.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekRepositoryGarbageCollect(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWeekRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weeks w")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.GarbageCollect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepositoryGarbageCollect(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTagRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tags t")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.GarbageCollect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAPIKeyRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE api_keys SET active = FALSE WHERE id = $1")).
		WithArgs("k1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.Deactivate(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, found)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE api_keys SET active = FALSE WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err = repo.Deactivate(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}
