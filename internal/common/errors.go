// Package common defines shared constants and sentinel errors used across
// passfort components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Identity errors.
	ErrInvalidCredentials = errors.New("invalid login/password")
	ErrDuplicateIdentity  = errors.New("email or username already taken")

	// Access token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session (refresh credential) lifecycle errors.
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidSession  = errors.New("invalid session")

	// Ephemeral token redemption errors. An already-redeemed token is
	// indistinguishable from an expired or never-issued one.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailMismatch         = errors.New("email mismatch")
)
