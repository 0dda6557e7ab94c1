package services

import (
	"context"
	"errors"
	"log"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"gorm.io/gorm"
)

// ReportingService promotes completed delegated work into the director's view.
type ReportingService struct {
	taskRepo repository.TaskRepository
}

// NewReportingService creates a new ReportingService
func NewReportingService(taskRepo repository.TaskRepository) *ReportingService {
	return &ReportingService{taskRepo: taskRepo}
}

// ReportResult summarizes a report batch.
type ReportResult struct {
	Submitted int      `json:"submitted"`
	Promoted  int      `json:"promoted"`
	Skipped   []uint64 `json:"skipped"`
}

// ReportToDirector flags each listed task as reported when it is completed,
// was assigned by the acting manager, and is owned by a team member. Missing
// or ineligible tasks are skipped; only a storage failure aborts the batch.
func (s *ReportingService) ReportToDirector(ctx context.Context, actor Actor, taskIDs []uint64) (*ReportResult, error) {
	if err := actor.Require(models.RoleManager); err != nil {
		return nil, err
	}
	if len(taskIDs) == 0 {
		return nil, ErrNoTaskIDsProvided
	}

	result := &ReportResult{
		Submitted: len(taskIDs),
		Skipped:   []uint64{},
	}

	for _, id := range taskIDs {
		task, err := s.taskRepo.FindByID(ctx, id, "Owner")
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("report to director: task %d not found, skipping", id)
				result.Skipped = append(result.Skipped, id)
				continue
			}
			return nil, storageError("find task", err)
		}

		if !reportable(task, actor.ID) {
			log.Printf("report to director: task %d is not eligible for manager %d, skipping", id, actor.ID)
			result.Skipped = append(result.Skipped, id)
			continue
		}

		if err := s.taskRepo.MarkReported(ctx, id); err != nil {
			return nil, storageError("mark task reported", err)
		}
		result.Promoted++
	}

	return result, nil
}

func reportable(task *models.Task, managerID uint64) bool {
	return task.Status == models.TaskStatusCompleted &&
		task.AssignedByID != nil && *task.AssignedByID == managerID &&
		task.Owner.Role == models.RoleTeamMember
}
