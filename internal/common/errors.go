// Package common defines shared constants and sentinel errors used across
// the movie search server and its operator CLI. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid, expired, revoked or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors (malformed client input).
	ErrValidation = errors.New("validation error")

	// Storage errors.
	ErrDuplicate         = errors.New("already exists")
	ErrStorageContention = errors.New("storage contention")
	ErrStorage           = errors.New("storage error")

	// Upstream catalog errors.
	ErrUpstream            = errors.New("upstream error")
	ErrUpstreamAuth        = errors.New("upstream rejected credentials")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Configuration errors surfaced at request time.
	ErrMissingSecret = errors.New("JWT_SECRET is not configured")
	ErrMissingAPIKey = errors.New("TMDB_API_KEY is not configured")
)
