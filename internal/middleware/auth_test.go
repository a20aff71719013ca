package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/service"
	"github.com/comsoc/events-api/pkg/config"
)

const testSecret = "test-secret"

type fakeKeyStore struct {
	keys []models.APIKey
}

func (f *fakeKeyStore) Create(_ context.Context, key *models.APIKey) error {
	f.keys = append(f.keys, *key)
	return nil
}

func (f *fakeKeyStore) List(context.Context) ([]models.APIKey, error) { return f.keys, nil }

func (f *fakeKeyStore) ListActive(context.Context) ([]models.APIKey, error) {
	var active []models.APIKey
	for _, k := range f.keys {
		if k.Active {
			active = append(active, k)
		}
	}
	return active, nil
}

func (f *fakeKeyStore) FindByID(context.Context, string) (*models.APIKey, error) { return nil, nil }

func (f *fakeKeyStore) Deactivate(context.Context, string) (bool, error) { return false, nil }

func newAuthService() *service.AuthService {
	return service.NewAuthService(config.JWTConfig{
		Secret:     testSecret,
		ExecGroups: []string{"exec"},
	})
}

func signToken(t *testing.T, groups ...string) string {
	t.Helper()
	claims := models.SessionClaims{
		Username: "alex",
		Groups:   groups,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return raw
}

func perform(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func TestSessionMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuthService()

	router := gin.New()
	router.GET("/protected", Session(auth), func(c *gin.Context) {
		claims := CurrentUser(c)
		require.NotNil(t, claims)
		c.JSON(http.StatusOK, gin.H{"user": claims.Username})
	})

	rec := perform(router, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(router, map[string]string{"Authorization": "nonsense"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(router, map[string]string{"Authorization": "Bearer " + signToken(t, "students")})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alex")
}

func TestRequireExec(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuthService()

	router := gin.New()
	router.GET("/protected", Session(auth), RequireExec(auth), okHandler)

	rec := perform(router, map[string]string{"Authorization": "Bearer " + signToken(t, "students")})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = perform(router, map[string]string{"Authorization": "Bearer " + signToken(t, "exec")})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteAccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuthService()

	hash, err := bcrypt.GenerateFromPassword([]byte("the-key"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &fakeKeyStore{keys: []models.APIKey{{ID: "k1", KeyHash: string(hash), Owner: "bot", Active: true}}}
	keys := service.NewAPIKeyService(store, nil)

	router := gin.New()
	router.GET("/protected", WriteAccess(auth, keys), okHandler)

	rec := perform(router, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(router, map[string]string{APIKeyHeader: "the-key"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(router, map[string]string{APIKeyHeader: "wrong-key"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(router, map[string]string{"Authorization": "Bearer " + signToken(t, "exec")})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = perform(router, map[string]string{"Authorization": "Bearer " + signToken(t, "students")})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOptionalSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := newAuthService()

	router := gin.New()
	router.GET("/protected", OptionalSession(auth), func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.JSON(http.StatusOK, gin.H{"who": CurrentUser(c).Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"who": "anonymous"})
	})

	rec := perform(router, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anonymous")

	rec = perform(router, map[string]string{"Authorization": "Bearer " + signToken(t, "exec")})
	assert.Contains(t, rec.Body.String(), "alex")
}
