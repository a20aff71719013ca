package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comsoc/events-api/internal/models"
)

// APIKeyRepository persists API keys for external tooling.
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository constructs an API key repository.
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

const apiKeyColumns = `id, key_hash, owner, created_at, active`

// Create inserts a new key record.
func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO api_keys (id, key_hash, owner, created_at, active)
VALUES (:id, :key_hash, :owner, :created_at, :active)`
	if _, err := r.db.NamedExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// List returns every key, newest first.
func (r *APIKeyRepository) List(ctx context.Context) ([]models.APIKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM api_keys ORDER BY created_at DESC`, apiKeyColumns)
	var keys []models.APIKey
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// ListActive returns keys accepted for authentication.
func (r *APIKeyRepository) ListActive(ctx context.Context) ([]models.APIKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM api_keys WHERE active = TRUE`, apiKeyColumns)
	var keys []models.APIKey
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list active api keys: %w", err)
	}
	return keys, nil
}

// FindByID loads a key, nil when absent.
func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (*models.APIKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM api_keys WHERE id = $1`, apiKeyColumns)
	var key models.APIKey
	if err := r.db.GetContext(ctx, &key, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return &key, nil
}

// Deactivate disables a key permanently. Returns false when no row
// matched.
func (r *APIKeyRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE api_keys SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate api key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate api key: %w", err)
	}
	return affected > 0, nil
}
