package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by identity-provider session
// tokens. Group membership decides exec access.
type SessionClaims struct {
	Username string   `json:"preferred_username"`
	Groups   []string `json:"groups"`
	jwt.RegisteredClaims
}

// InGroup reports whether the session belongs to any of the given groups.
func (c *SessionClaims) InGroup(groups ...string) bool {
	for _, have := range c.Groups {
		for _, want := range groups {
			if have == want {
				return true
			}
		}
	}
	return false
}
