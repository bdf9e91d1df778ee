package domain

import "time"

// User mirrors the persisted representation in the users table. The password
// hash is opaque to everything except credential verification and must never
// be logged or serialized outward.
type User struct {
	ID           int64
	Name         string
	PasswordHash string
	RegisteredAt time.Time
}
