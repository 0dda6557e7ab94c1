package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/dto"
	apierrors "github.com/yukikurage/task-hierarchy-api/internal/errors"
	"github.com/yukikurage/task-hierarchy-api/internal/middleware"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
	"github.com/yukikurage/task-hierarchy-api/internal/utils"
)

// TaskHandler serves the caller's own tasks and the generic task resource.
type TaskHandler struct {
	visibility *services.VisibilityService
	assignment *services.AssignmentService
	lifecycle  *services.LifecycleService
	stats      *services.StatsService
}

func NewTaskHandler(
	visibility *services.VisibilityService,
	assignment *services.AssignmentService,
	lifecycle *services.LifecycleService,
	stats *services.StatsService,
) *TaskHandler {
	return &TaskHandler{
		visibility: visibility,
		assignment: assignment,
		lifecycle:  lifecycle,
		stats:      stats,
	}
}

// ListMyTasks returns every task owned by the caller, by priority.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tasks, err := h.visibility.TasksForTeamMember(c.Request.Context(), actor.ID)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ListMyActiveTasks returns the caller's tasks that are not completed.
func (h *TaskHandler) ListMyActiveTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tasks, err := h.visibility.ActiveTasksForTeamMember(c.Request.Context(), actor.ID)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

func (h *TaskHandler) ListMyTasksByStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := models.TaskStatus(c.Param("status"))
	tasks, err := h.visibility.TasksForTeamMemberByStatus(c.Request.Context(), actor.ID, status)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// MyStats returns task counters for the caller.
func (h *TaskHandler) MyStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.stats.UserStats(c.Request.Context(), actor.ID)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CompleteTask marks one of the caller's tasks as completed.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.lifecycle.MarkCompleted(c.Request.Context(), taskID, actor.ID)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus moves one of the caller's tasks to another status.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.lifecycle.UpdateStatus(c.Request.Context(), taskID, actor.ID, req.Status)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ListTasks returns every task, paginated. Directors only.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	// Get pagination parameters
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.visibility.AllTasks(c.Request.Context(), actor, &params)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns the task loaded by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask stores a task on behalf of a manager or director, who is
// recorded as the assigner.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Title        string            `json:"title"`
		Description  string            `json:"description"`
		OwnerID      uint64            `json:"owner_id" binding:"required"`
		Priority     string            `json:"priority"`
		Status       models.TaskStatus `json:"status"`
		ParentTaskID *uint64           `json:"parent_task_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	assignedBy := actor.ID
	task, err := h.assignment.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		OwnerID:      req.OwnerID,
		Priority:     req.Priority,
		Status:       req.Status,
		AssignedByID: &assignedBy,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// EditTask applies a partial update. Any edit resets the status to PENDING.
func (h *TaskHandler) EditTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		OwnerID     *uint64 `json:"owner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.lifecycle.EditTask(c.Request.Context(), actor, taskID, services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task that has not been started.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.lifecycle.DeleteTask(c.Request.Context(), actor, taskID); err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
