package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/dto"
	apierrors "github.com/yukikurage/task-hierarchy-api/internal/errors"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

// ManagerHandler serves the manager workspace: team views, delegation and
// reporting upward.
type ManagerHandler struct {
	visibility *services.VisibilityService
	assignment *services.AssignmentService
	reporting  *services.ReportingService
	stats      *services.StatsService
	aiService  *services.AIService
}

func NewManagerHandler(
	visibility *services.VisibilityService,
	assignment *services.AssignmentService,
	reporting *services.ReportingService,
	stats *services.StatsService,
	aiService *services.AIService,
) *ManagerHandler {
	return &ManagerHandler{
		visibility: visibility,
		assignment: assignment,
		reporting:  reporting,
		stats:      stats,
		aiService:  aiService,
	}
}

type taskListFunc func(*gin.Context, services.Actor) ([]models.Task, error)

func (h *ManagerHandler) respondTasks(c *gin.Context, list taskListFunc) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	tasks, err := list(c, actor)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// TeamMembers lists the caller's direct reports.
func (h *ManagerHandler) TeamMembers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	members, err := h.visibility.TeamMembers(c.Request.Context(), actor)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTOs(members))
}

// TeamTasks lists tasks the caller delegated.
func (h *ManagerHandler) TeamTasks(c *gin.Context) {
	h.respondTasks(c, func(c *gin.Context, a services.Actor) ([]models.Task, error) {
		return h.visibility.TeamTasks(c.Request.Context(), a)
	})
}

// MyTasks lists tasks the caller owns or delegated.
func (h *ManagerHandler) MyTasks(c *gin.Context) {
	h.respondTasks(c, func(c *gin.Context, a services.Actor) ([]models.Task, error) {
		return h.visibility.TasksForManager(c.Request.Context(), a)
	})
}

func (h *ManagerHandler) OwnTasks(c *gin.Context) {
	h.respondTasks(c, func(c *gin.Context, a services.Actor) ([]models.Task, error) {
		return h.visibility.ManagerOwnTasks(c.Request.Context(), a)
	})
}

// CompletedTasks lists delegated tasks that are ready to be reported.
func (h *ManagerHandler) CompletedTasks(c *gin.Context) {
	h.respondTasks(c, func(c *gin.Context, a services.Actor) ([]models.Task, error) {
		return h.visibility.CompletedTeamTasks(c.Request.Context(), a)
	})
}

func (h *ManagerHandler) TeamPerformance(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	perf, err := h.stats.TeamPerformance(c.Request.Context(), actor)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

// AssignTask delegates a new task to a team member. The member's own
// manager is recorded as the assigner.
func (h *ManagerHandler) AssignTask(c *gin.Context) {
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

	task, err := h.assignment.AssignToTeamMember(c.Request.Context(), actor, services.AssignTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		OwnerID:      req.OwnerID,
		Priority:     req.Priority,
		Status:       req.Status,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ReportToDirector submits completed team tasks to the directors.
func (h *ManagerHandler) ReportToDirector(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		TaskIDs []uint64 `json:"task_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.reporting.ReportToDirector(c.Request.Context(), actor, req.TaskIDs)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DraftTasks turns free text into suggested tasks. Nothing is stored.
func (h *ManagerHandler) DraftTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.aiService.DraftTasksFromText(c.Request.Context(), actor, req.Text)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
		"count": len(drafts),
	})
}
