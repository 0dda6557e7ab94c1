package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"gorm.io/gorm"
)

// AssignmentService creates tasks and delegates them down the hierarchy.
type AssignmentService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *AssignmentService {
	return &AssignmentService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	OwnerID      uint64
	Priority     string
	Status       models.TaskStatus
	AssignedByID *uint64
	ParentTaskID *uint64
}

// AssignTaskInput represents a delegation from a manager to a team member
type AssignTaskInput struct {
	Title        string
	Description  string
	OwnerID      uint64
	Priority     string
	Status       models.TaskStatus
	ParentTaskID *uint64
}

// CreateTask stores a new task for OwnerID. It does not check whether the
// caller may give work to that owner.
func (s *AssignmentService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status, err := initialStatus(input.Status)
	if err != nil {
		return nil, err
	}

	if _, err := s.findUser(ctx, input.OwnerID, ErrOwnerNotFound); err != nil {
		return nil, err
	}

	if input.ParentTaskID != nil {
		exists, err := s.taskRepo.ExistsByID(ctx, *input.ParentTaskID)
		if err != nil {
			return nil, storageError("check parent task", err)
		}
		if !exists {
			return nil, ErrParentTaskNotFound
		}
	}

	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		Priority:     input.Priority,
		Status:       status,
		OwnerID:      input.OwnerID,
		AssignedByID: input.AssignedByID,
		ParentTaskID: input.ParentTaskID,
	}
	return s.save(ctx, task)
}

// AssignToTeamMember delegates a new task to a team member. The assigner is
// always the target's current manager, which is not necessarily the caller.
func (s *AssignmentService) AssignToTeamMember(ctx context.Context, actor Actor, input AssignTaskInput) (*models.Task, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status, err := initialStatus(input.Status)
	if err != nil {
		return nil, err
	}

	target, err := s.findUser(ctx, input.OwnerID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	if target.ManagerID == nil {
		return nil, ErrNoManager
	}
	if *target.ManagerID != actor.ID {
		log.Printf("manager %d delegated to user %d whose manager is %d", actor.ID, target.ID, *target.ManagerID)
	}

	assignedBy := *target.ManagerID
	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		Priority:     input.Priority,
		Status:       status,
		OwnerID:      target.ID,
		AssignedByID: &assignedBy,
	}

	if input.ParentTaskID != nil {
		exists, err := s.taskRepo.ExistsByID(ctx, *input.ParentTaskID)
		if err != nil {
			return nil, storageError("check parent task", err)
		}
		if exists {
			parentID := *input.ParentTaskID
			task.ParentTaskID = &parentID
		} else {
			log.Printf("parent task %d not found, delegating without a parent", *input.ParentTaskID)
		}
	}

	return s.save(ctx, task)
}

func (s *AssignmentService) save(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, storageError("create task", err)
	}

	created, err := s.taskRepo.FindByID(ctx, task.ID, "Owner", "AssignedBy")
	if err != nil {
		return nil, storageError("reload task", err)
	}
	return created, nil
}

func (s *AssignmentService) findUser(ctx context.Context, id uint64, notFound error) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, storageError("find user", err)
	}
	return user, nil
}

// initialStatus defaults a blank status to PENDING.
func initialStatus(status models.TaskStatus) (models.TaskStatus, error) {
	if strings.TrimSpace(string(status)) == "" {
		return models.TaskStatusPending, nil
	}
	if !status.Settable() {
		return "", ErrUnknownStatus
	}
	return status, nil
}
