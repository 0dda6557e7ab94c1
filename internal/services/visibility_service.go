package services

import (
	"context"
	"errors"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"github.com/yukikurage/task-hierarchy-api/internal/utils"
	"gorm.io/gorm"
)

// VisibilityService resolves which tasks each role may see.
type VisibilityService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewVisibilityService creates a new VisibilityService
func NewVisibilityService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *VisibilityService {
	return &VisibilityService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// TasksForTeamMember returns every task owned by userID, highest priority first.
func (s *VisibilityService) TasksForTeamMember(ctx context.Context, userID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.FindByOwnerOrderedByPriority(ctx, userID)
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	return tasks, nil
}

// ActiveTasksForTeamMember is TasksForTeamMember without completed tasks.
func (s *VisibilityService) ActiveTasksForTeamMember(ctx context.Context, userID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.FindActiveByOwnerOrderedByPriority(ctx, userID)
	if err != nil {
		return nil, storageError("list active tasks", err)
	}
	return tasks, nil
}

// TasksForTeamMemberByStatus returns userID's tasks in exactly one status.
func (s *VisibilityService) TasksForTeamMemberByStatus(ctx context.Context, userID uint64, status models.TaskStatus) ([]models.Task, error) {
	if !status.Settable() {
		return nil, ErrUnknownStatus
	}

	tasks, err := s.taskRepo.FindByOwnerAndStatus(ctx, userID, status)
	if err != nil {
		return nil, storageError("list tasks by status", err)
	}
	return tasks, nil
}

// TasksForManager returns the manager's own tasks plus the delegated child
// tasks it assigned.
func (s *VisibilityService) TasksForManager(ctx context.Context, actor Actor) ([]models.Task, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.FindManagerVisible(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list manager tasks", err)
	}
	return tasks, nil
}

// TeamTasks returns the tasks the manager assigned to team members.
func (s *VisibilityService) TeamTasks(ctx context.Context, actor Actor) ([]models.Task, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.FindAssignedToTeam(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list team tasks", err)
	}
	return tasks, nil
}

// ManagerOwnTasks returns only the tasks the manager owns.
func (s *VisibilityService) ManagerOwnTasks(ctx context.Context, actor Actor) ([]models.Task, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.FindByOwner(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list own tasks", err)
	}
	return tasks, nil
}

// TeamMembers returns the active team members reporting to the manager.
func (s *VisibilityService) TeamMembers(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}

	members, err := s.userRepo.FindByManagerID(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list team members", err)
	}
	return members, nil
}

// CompletedTeamTasks returns completed tasks owned by the manager's team members.
func (s *VisibilityService) CompletedTeamTasks(ctx context.Context, actor Actor) ([]models.Task, error) {
	members, err := s.TeamMembers(ctx, actor)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	tasks, err := s.taskRepo.FindByOwnersAndStatus(ctx, ids, models.TaskStatusCompleted)
	if err != nil {
		return nil, storageError("list completed team tasks", err)
	}
	return tasks, nil
}

// TasksForDirector returns top-level tasks owned by managers. Every director
// sees the same set; the actor's identity does not narrow it.
func (s *VisibilityService) TasksForDirector(ctx context.Context, actor Actor) ([]models.Task, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.FindDirectorVisible(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list director tasks", err)
	}
	return tasks, nil
}

// ReportedTasks returns tasks managers have reported upward.
func (s *VisibilityService) ReportedTasks(ctx context.Context, actor Actor) ([]models.Task, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.FindReported(ctx)
	if err != nil {
		return nil, storageError("list reported tasks", err)
	}
	return tasks, nil
}

// AllTasks lists every task for a director, newest first.
func (s *VisibilityService) AllTasks(ctx context.Context, actor Actor, params *utils.PaginationParams) ([]models.Task, int64, error) {
	if err := actor.Require(models.RoleDirector); err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.FindAll(ctx, params)
	if err != nil {
		return nil, 0, storageError("list all tasks", err)
	}
	return tasks, total, nil
}

// GetTask returns a single task if the actor may see it: directors see every
// task, owners see their own, and managers see tasks they assigned or that
// belong to their team members.
func (s *VisibilityService) GetTask(ctx context.Context, actor Actor, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Owner", "AssignedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storageError("find task", err)
	}

	if !canSee(actor, task) {
		return nil, ErrTaskNotVisible
	}
	return task, nil
}

func canSee(actor Actor, task *models.Task) bool {
	switch {
	case actor.IsDirector():
		return true
	case task.OwnerID == actor.ID:
		return true
	case actor.IsManager():
		if task.AssignedByID != nil && *task.AssignedByID == actor.ID {
			return true
		}
		return task.Owner.ManagerID != nil && *task.Owner.ManagerID == actor.ID
	}
	return false
}
