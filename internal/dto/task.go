package dto

import (
	"time"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 uint64            `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Priority           string            `json:"priority"`
	Status             models.TaskStatus `json:"status"`
	OwnerID            uint64            `json:"owner_id"`
	AssignedByID       *uint64           `json:"assigned_by_id"`
	ParentTaskID       *uint64           `json:"parent_task_id"`
	ReportedToDirector bool              `json:"reported_to_director"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Owner              *UserSummaryDTO   `json:"owner,omitempty"`
	AssignedBy         *UserSummaryDTO   `json:"assigned_by,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
	TotalPages int                      `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Priority:           task.Priority,
		Status:             task.Status,
		OwnerID:            task.OwnerID,
		AssignedByID:       task.AssignedByID,
		ParentTaskID:       task.ParentTaskID,
		ReportedToDirector: task.ReportedToDirector,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}

	// Include owner if preloaded
	if task.Owner.ID != 0 {
		owner := toUserSummary(task.Owner)
		dto.Owner = &owner
	}

	if task.AssignedBy != nil && task.AssignedBy.ID != 0 {
		by := toUserSummary(*task.AssignedBy)
		dto.AssignedBy = &by
	}

	return dto
}

// ToTaskDTOs keeps the order of tasks.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, totalCount int64) TaskListResponse {
	totalPages := int(totalCount) / params.Limit
	if int(totalCount)%params.Limit > 0 {
		totalPages++
	}

	return TaskListResponse{
		Tasks: ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: totalCount,
		},
		TotalPages: totalPages,
	}
}
