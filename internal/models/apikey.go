package models

import "time"

// APIKey authorises external tools to create events. Only a bcrypt hash
// of the key material is stored; the plaintext is shown exactly once at
// creation. Keys are deactivated, never deleted.
type APIKey struct {
	ID        string    `db:"id" json:"id"`
	KeyHash   string    `db:"key_hash" json:"-"`
	Owner     string    `db:"owner" json:"owner"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Active    bool      `db:"active" json:"active"`
}
