package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/pkg/config"
	appErrors "github.com/comsoc/events-api/pkg/errors"
)

// AuthService validates session tokens minted by the identity provider
// and answers group-membership questions. The service never issues
// tokens itself.
type AuthService struct {
	secret     []byte
	issuer     string
	execGroups []string
}

// NewAuthService constructs an auth service.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		execGroups: cfg.ExecGroups,
	}
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(raw string) (*models.SessionClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session token")
	}
	if !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session token")
	}
	return claims, nil
}

// IsExec reports whether the session belongs to an exec group.
func (s *AuthService) IsExec(claims *models.SessionClaims) bool {
	if claims == nil {
		return false
	}
	return claims.InGroup(s.execGroups...)
}
