package models

import "time"

// BlacklistEntry revokes a token identified by its fingerprint until the
// token's own expiry.
type BlacklistEntry struct {
	ID          int64
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
