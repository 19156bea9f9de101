package models

import "time"

// User is an account as seen by the storage subsystem. Credentials live in
// the same table but are owned by the authentication flow.
type User struct {
	ID        int64
	Name      string
	Privilege int
	Points    int64
	JoinedAt  time.Time
}
