package httpapi

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// userFromContext returns the user resolved by the auth middleware.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// tokenFromContext returns the raw bearer token the request presented.
func tokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}
