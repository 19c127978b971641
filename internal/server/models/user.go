// Package models contains the persistent entities of the task manager.
package models

import "time"

// User is an account record. PasswordHash, Avatar and the active token
// records never appear in external representations: the JSON encoding
// excludes them, and the avatar is served through its own endpoint.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Age          int       `db:"age" json:"age"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	Avatar       []byte    `db:"avatar" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
