package avatars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgInvalidTextRep = "22P02"

// PostgresStore keeps avatar bytes in the avatar column of the users table.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func isBadUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRep
}

func (s *PostgresStore) Put(ctx context.Context, userID string, data []byte) error {
	query := `
		UPDATE users
		SET avatar = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, userID, data)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) ([]byte, error) {
	query := `
		SELECT avatar
		FROM users
		WHERE id = $1
	`
	var avatar []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isBadUUID(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	// a NULL column scans as a nil slice
	if len(avatar) == 0 {
		return nil, common.ErrNotFound
	}

	return avatar, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET avatar = NULL, updated_at = now()
		WHERE id = $1
	`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
