package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/service"
	appErrors "github.com/comsoc/events-api/pkg/errors"
	"github.com/comsoc/events-api/pkg/response"
)

// Context keys for the authenticated principal.
const (
	ContextUserKey   = "currentUser"
	ContextAPIKeyKey = "currentAPIKey"
)

// APIKeyHeader carries keys minted for external tooling.
const APIKeyHeader = "X-API-Key"

// Session protects routes by requiring a valid identity-provider token.
func Session(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessionFromHeader(c, authService)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid token is present but
// never blocks, so public listings can include drafts for exec viewers.
func OptionalSession(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := sessionFromHeader(c, authService); err == nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}
}

// RequireExec allows only sessions belonging to an exec group. Must run
// after Session.
func RequireExec(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !authService.IsExec(claims) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// WriteAccess guards the write API: either an exec session token or an
// active API key is accepted.
func WriteAccess(authService *service.AuthService, keyService *service.APIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if presented := c.GetHeader(APIKeyHeader); presented != "" {
			key, err := keyService.Verify(c.Request.Context(), presented)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			c.Set(ContextAPIKeyKey, key)
			c.Next()
			return
		}

		claims, err := sessionFromHeader(c, authService)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !authService.IsExec(claims) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentUser returns the session claims attached by Session or
// OptionalSession, nil when the request is anonymous.
func CurrentUser(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

func sessionFromHeader(c *gin.Context, authService *service.AuthService) (*models.SessionClaims, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return authService.ValidateToken(parts[1])
}
