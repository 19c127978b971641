package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// ListFilter describes the optional query parameters of a task listing.
// Nil pointer fields mean "not given".
type ListFilter struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     *int
	Skip      *int
}

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Task, error)
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}
