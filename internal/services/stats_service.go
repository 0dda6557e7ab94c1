package services

import (
	"context"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
)

// StatsService computes task counters for dashboards.
type StatsService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *StatsService {
	return &StatsService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

type UserTaskStats struct {
	Total     int64 `json:"total_tasks"`
	Active    int64 `json:"active_tasks"`
	Completed int64 `json:"completed_tasks"`
}

type TeamPerformance struct {
	TotalTeamMembers int     `json:"total_team_members"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	InProgressTasks  int     `json:"in_progress_tasks"`
	PendingTasks     int     `json:"pending_tasks"`
	CompletionRate   float64 `json:"completion_rate"`
}

// UserStats counts a user's tasks.
func (s *StatsService) UserStats(ctx context.Context, userID uint64) (*UserTaskStats, error) {
	total, err := s.taskRepo.CountByOwner(ctx, userID, repository.StatusFilter{})
	if err != nil {
		return nil, storageError("count tasks", err)
	}

	active, err := s.taskRepo.CountByOwner(ctx, userID, repository.StatusFilter{Status: models.TaskStatusCompleted, Exclude: true})
	if err != nil {
		return nil, storageError("count active tasks", err)
	}

	completed, err := s.taskRepo.CountByOwner(ctx, userID, repository.StatusFilter{Status: models.TaskStatusCompleted})
	if err != nil {
		return nil, storageError("count completed tasks", err)
	}

	return &UserTaskStats{
		Total:     total,
		Active:    active,
		Completed: completed,
	}, nil
}

// TeamPerformance summarizes the tasks a manager assigned to the team.
// CompletionRate is a percentage, zero when there are no tasks.
func (s *StatsService) TeamPerformance(ctx context.Context, actor Actor) (*TeamPerformance, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}

	members, err := s.userRepo.FindByManagerID(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list team members", err)
	}

	tasks, err := s.taskRepo.FindAssignedToTeam(ctx, actor.ID)
	if err != nil {
		return nil, storageError("list team tasks", err)
	}

	perf := &TeamPerformance{
		TotalTeamMembers: len(members),
		TotalTasks:       len(tasks),
	}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			perf.CompletedTasks++
		case models.TaskStatusInProgress:
			perf.InProgressTasks++
		case models.TaskStatusPending:
			perf.PendingTasks++
		}
	}
	if perf.TotalTasks > 0 {
		perf.CompletionRate = float64(perf.CompletedTasks) * 100 / float64(perf.TotalTasks)
	}

	return perf, nil
}
