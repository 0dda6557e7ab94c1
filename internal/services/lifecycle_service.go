package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"gorm.io/gorm"
)

// LifecycleService governs status transitions, edits and deletion.
type LifecycleService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *LifecycleService {
	return &LifecycleService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// TaskPatch holds the fields a manager may change. Nil fields are left as is.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *string
	OwnerID     *uint64
}

// MarkCompleted completes a task on behalf of its owner.
func (s *LifecycleService) MarkCompleted(ctx context.Context, taskID, actingUserID uint64) (*models.Task, error) {
	return s.setStatus(ctx, taskID, actingUserID, models.TaskStatusCompleted)
}

// UpdateStatus moves a task owned by actingUserID to any settable status.
func (s *LifecycleService) UpdateStatus(ctx context.Context, taskID, actingUserID uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.Settable() {
		return nil, ErrUnknownStatus
	}
	return s.setStatus(ctx, taskID, actingUserID, status)
}

func (s *LifecycleService) setStatus(ctx context.Context, taskID, actingUserID uint64, status models.TaskStatus) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.OwnerID != actingUserID {
		return nil, ErrNotTaskOwner
	}

	task.Status = status
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, storageError("update task status", err)
	}
	return task, nil
}

// EditTask merges patch into the task. Any edit reopens the task, so the
// status always ends up PENDING.
func (s *LifecycleService) EditTask(ctx context.Context, actor Actor, taskID uint64, patch TaskPatch) (*models.Task, error) {
	if err := actor.Require(models.RoleManager, models.RoleDirector); err != nil {
		return nil, err
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.OwnerID != nil {
		if _, err := s.userRepo.FindByID(ctx, *patch.OwnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOwnerNotFound
			}
			return nil, storageError("find new owner", err)
		}
		task.OwnerID = *patch.OwnerID
	}
	task.Status = models.TaskStatusPending

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, storageError("update task", err)
	}

	updated, err := s.taskRepo.FindByID(ctx, task.ID, "Owner", "AssignedBy")
	if err != nil {
		return nil, storageError("reload task", err)
	}
	return updated, nil
}

// DeleteTask removes a task that is neither in progress nor completed.
// Managers and directors may delete any such task; other users only their own.
func (s *LifecycleService) DeleteTask(ctx context.Context, actor Actor, taskID uint64) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}

	if task.OwnerID != actor.ID {
		if err := actor.Require(models.RoleManager, models.RoleDirector); err != nil {
			return err
		}
	}

	if !task.Status.Deletable() {
		return ErrTaskInFlight
	}

	if err := s.taskRepo.DeleteByID(ctx, taskID); err != nil {
		return storageError("delete task", err)
	}
	return nil
}

func (s *LifecycleService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storageError("find task", err)
	}
	return task, nil
}
