// Package blacklist declares the repository contract for revoked token
// fingerprints.
package blacklist

import (
	"context"
	"time"
)

// Repository stores revoked token fingerprints until the token's own expiry.
type Repository interface {
	// PurgeExpired deletes entries whose expiry is before now and returns how
	// many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// Contains reports whether fingerprint is revoked and still unexpired at now.
	Contains(ctx context.Context, fingerprint string, now time.Time) (bool, error)

	// Add revokes fingerprint until expiresAt. Adding a fingerprint that is
	// already present is not an error.
	Add(ctx context.Context, fingerprint string, expiresAt time.Time) error
}
