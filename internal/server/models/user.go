// Package models holds the records persisted by the server and the shapes
// exchanged with the upstream catalog.
package models

import "time"

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
