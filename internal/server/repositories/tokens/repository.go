package tokens

import "context"

type Repository interface {
	Add(ctx context.Context, userID string, token string) error
	Exists(ctx context.Context, userID string, token string) (bool, error)
	Delete(ctx context.Context, userID string, token string) error
	DeleteAll(ctx context.Context, userID string) error
}
