package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comsoc/events-api/internal/models"
)

// TagRepository persists event tags.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository constructs a tag repository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// List returns every tag ordered by name.
func (r *TagRepository) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// FindByName loads a tag by its lowercase name, nil when absent.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.GetContext(ctx, &tag, `SELECT id, name FROM tags WHERE name = $1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tag: %w", err)
	}
	return &tag, nil
}

// Search returns tags whose name contains the query, ordered by name.
// A negative limit returns everything.
func (r *TagRepository) Search(ctx context.Context, q string, limit int) ([]models.Tag, error) {
	query := `SELECT id, name FROM tags WHERE name ILIKE $1 ORDER BY name`
	args := []interface{}{"%" + q + "%"}
	if limit >= 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	return tags, nil
}

// EventIDsForTag returns the ids of events carrying the tag.
func (r *TagRepository) EventIDsForTag(ctx context.Context, name string) ([]string, error) {
	const query = `SELECT et.event_id FROM event_tags et
JOIN tags t ON t.id = et.tag_id
WHERE t.name = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, name); err != nil {
		return nil, fmt.Errorf("list tag events: %w", err)
	}
	return ids, nil
}

// GarbageCollect deletes every tag with no remaining events.
func (r *TagRepository) GarbageCollect(ctx context.Context) (int64, error) {
	const query = `DELETE FROM tags t
WHERE NOT EXISTS (SELECT 1 FROM event_tags et WHERE et.tag_id = t.id)`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("garbage collect tags: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("garbage collect tags: %w", err)
	}
	return deleted, nil
}
