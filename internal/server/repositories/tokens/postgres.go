// Package tokens provides a PostgreSQL-backed repository for the active
// token records of a user. A record's presence is what keeps the
// corresponding bearer token alive; deleting it revokes the session.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add appends a token record to the user's active list.
func (r *PostgresRepository) Add(ctx context.Context, userID string, token string) error {
	query := `
		INSERT INTO user_tokens (user_id, token)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Exists reports whether the exact token string is still among the user's
// active records.
func (r *PostgresRepository) Exists(ctx context.Context, userID string, token string) (bool, error) {
	query := `
		SELECT 1
		FROM user_tokens
		WHERE user_id = $1 AND token = $2
		LIMIT 1
	`
	var one int
	err := r.db.QueryRowContext(ctx, query, userID, token).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

// Delete removes the matching token record. Removing an absent token is a
// no-op, which makes revocation idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, token string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token = $2
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteAll clears every token record of the user (logout-all).
func (r *PostgresRepository) DeleteAll(ctx context.Context, userID string) error {
	query := `
		DELETE FROM user_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
