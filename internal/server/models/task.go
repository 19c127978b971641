package models

import "time"

// Task belongs to exactly one user; OwnerID references users(id) with
// ON DELETE CASCADE, so removing an account removes its tasks.
type Task struct {
	ID          string    `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
