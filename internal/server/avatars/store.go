// Package avatars stores the processed avatar image of a user. The default
// backend keeps the bytes in the users table; an S3-compatible backend can
// take over when object storage is configured.
package avatars

import "context"

// Store persists one avatar blob per user.
type Store interface {
	// Put replaces the user's avatar.
	Put(ctx context.Context, userID string, data []byte) error

	// Get returns the avatar bytes, or common.ErrNotFound when the user has
	// none (or does not exist).
	Get(ctx context.Context, userID string) ([]byte, error)

	// Delete removes the avatar. Removing an absent avatar is a no-op.
	Delete(ctx context.Context, userID string) error
}
