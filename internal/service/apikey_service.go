package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/comsoc/events-api/internal/models"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

type apiKeyStore interface {
	Create(ctx context.Context, key *models.APIKey) error
	List(ctx context.Context) ([]models.APIKey, error)
	ListActive(ctx context.Context) ([]models.APIKey, error)
	FindByID(ctx context.Context, id string) (*models.APIKey, error)
	Deactivate(ctx context.Context, id string) (bool, error)
}

// APIKeyService manages write-access keys for external tooling. Keys
// are stored bcrypt-hashed; the plaintext is shown exactly once, at
// creation. Keys cannot be reactivated or deleted, only deactivated, so
// the audit trail survives.
type APIKeyService struct {
	keys   apiKeyStore
	logger *zap.Logger
}

// NewAPIKeyService constructs an API key service.
func NewAPIKeyService(keys apiKeyStore, logger *zap.Logger) *APIKeyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIKeyService{keys: keys, logger: logger}
}

// Create mints a new key for an owner and returns the plaintext
// together with the stored record.
func (s *APIKeyService) Create(ctx context.Context, owner string) (string, *models.APIKey, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "owner is required")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generate api key: %w", err)
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash api key: %w", err)
	}

	key := &models.APIKey{
		KeyHash: string(hash),
		Owner:   owner,
		Active:  true,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return "", nil, err
	}

	s.logger.Info("api key created", zap.String("id", key.ID), zap.String("owner", owner))
	return plaintext, key, nil
}

// List returns every key record, newest first.
func (s *APIKeyService) List(ctx context.Context) ([]models.APIKey, error) {
	return s.keys.List(ctx)
}

// Get fetches one key record.
func (s *APIKeyService) Get(ctx context.Context, id string) (*models.APIKey, error) {
	key, err := s.keys.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "api key not found")
	}
	return key, nil
}

// Deactivate permanently disables a key.
func (s *APIKeyService) Deactivate(ctx context.Context, id string) error {
	found, err := s.keys.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "api key not found")
	}
	s.logger.Info("api key deactivated", zap.String("id", id))
	return nil
}

// Verify reports whether a presented plaintext matches any active key.
func (s *APIKeyService) Verify(ctx context.Context, presented string) (*models.APIKey, error) {
	if presented == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing api key")
	}

	keys, err := s.keys.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		if bcrypt.CompareHashAndPassword([]byte(keys[i].KeyHash), []byte(presented)) == nil {
			return &keys[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid api key")
}
