package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
)

// TaskUpdate carries the task fields a client may change; description and
// completed are the complete whitelist for this path.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskService enforces ownership scoping: every operation is keyed by the
// acting user, and a task that exists but belongs to someone else is
// indistinguishable from one that does not exist.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
	}
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("%w: description is required", common.ErrValidation)
	}
	return description, nil
}

// Create stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, description string, completed bool) (*models.Task, error) {

	description, err := validateDescription(description)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Description: description,
		Completed:   completed,
		OwnerID:     ownerID,
	}

	created, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, common.ErrInternal
	}

	return created, nil
}

// List returns the owner's tasks after applying the filter.
func (s *TaskService) List(ctx context.Context, ownerID string, filter tasks.ListFilter) ([]*models.Task, error) {
	result, err := s.repomanager.Tasks(s.db).List(ctx, ownerID, filter)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

// Get returns one task, or common.ErrNotFound when the id is unknown or the
// task belongs to another user.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).GetByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return task, nil
}

// Update applies a whitelisted partial update to an owned task.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, upd TaskUpdate) (*models.Task, error) {

	repo := s.repomanager.Tasks(s.db)

	task, err := repo.GetByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if upd.Description != nil {
		description, err := validateDescription(*upd.Description)
		if err != nil {
			return nil, err
		}
		task.Description = description
	}

	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}

	updated, err := repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	return updated, nil
}

// Delete removes an owned task.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error) {

	repo := s.repomanager.Tasks(s.db)

	task, err := repo.GetByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if err := repo.DeleteByIDAndOwner(ctx, taskID, ownerID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	return task, nil
}
