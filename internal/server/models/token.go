package models

import "time"

// TokenRecord is one active session token of a user. A signed token string
// authenticates only while its record is still present; logout deletes the
// matching record, logout-all deletes every record of the user.
type TokenRecord struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}
