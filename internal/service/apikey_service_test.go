package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/comsoc/events-api/internal/models"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

type fakeAPIKeyStore struct {
	keys []models.APIKey
}

func (f *fakeAPIKeyStore) Create(_ context.Context, key *models.APIKey) error {
	key.ID = "key-1"
	key.CreatedAt = time.Now().UTC()
	f.keys = append(f.keys, *key)
	return nil
}

func (f *fakeAPIKeyStore) List(context.Context) ([]models.APIKey, error) {
	return f.keys, nil
}

func (f *fakeAPIKeyStore) ListActive(context.Context) ([]models.APIKey, error) {
	var active []models.APIKey
	for _, k := range f.keys {
		if k.Active {
			active = append(active, k)
		}
	}
	return active, nil
}

func (f *fakeAPIKeyStore) FindByID(_ context.Context, id string) (*models.APIKey, error) {
	for i := range f.keys {
		if f.keys[i].ID == id {
			return &f.keys[i], nil
		}
	}
	return nil, nil
}

func (f *fakeAPIKeyStore) Deactivate(_ context.Context, id string) (bool, error) {
	for i := range f.keys {
		if f.keys[i].ID == id {
			f.keys[i].Active = false
			return true, nil
		}
	}
	return false, nil
}

func TestCreateAPIKeyHashesPlaintext(t *testing.T) {
	store := &fakeAPIKeyStore{}
	svc := NewAPIKeyService(store, nil)

	plaintext, key, err := svc.Create(context.Background(), " Discord Bot ")
	require.NoError(t, err)

	assert.NotEmpty(t, plaintext)
	assert.Equal(t, "discord bot", key.Owner)
	assert.True(t, key.Active)
	assert.NotEqual(t, plaintext, key.KeyHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(plaintext)))
}

func TestCreateAPIKeyRequiresOwner(t *testing.T) {
	svc := NewAPIKeyService(&fakeAPIKeyStore{}, nil)

	_, _, err := svc.Create(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestVerifyAPIKey(t *testing.T) {
	store := &fakeAPIKeyStore{}
	svc := NewAPIKeyService(store, nil)

	plaintext, created, err := svc.Create(context.Background(), "bot")
	require.NoError(t, err)

	key, err := svc.Verify(context.Background(), plaintext)
	require.NoError(t, err)
	assert.Equal(t, created.ID, key.ID)

	_, err = svc.Verify(context.Background(), "not-the-key")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Verify(context.Background(), "")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestVerifyRejectsDeactivatedKey(t *testing.T) {
	store := &fakeAPIKeyStore{}
	svc := NewAPIKeyService(store, nil)

	plaintext, created, err := svc.Create(context.Background(), "bot")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	_, err = svc.Verify(context.Background(), plaintext)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestDeactivateAPIKeyNotFound(t *testing.T) {
	svc := NewAPIKeyService(&fakeAPIKeyStore{}, nil)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
