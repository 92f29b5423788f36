package models

import "time"

// Session is one authenticated device: a durable refresh credential.
// TokenHash holds the SHA-256 of the raw refresh secret; the raw secret
// itself is never persisted.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
}
