package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/dto"
	apierrors "github.com/yukikurage/task-hierarchy-api/internal/errors"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

type DirectorHandler struct {
	visibility *services.VisibilityService
}

func NewDirectorHandler(visibility *services.VisibilityService) *DirectorHandler {
	return &DirectorHandler{visibility: visibility}
}

// Tasks returns the top-level tasks owned by managers.
func (h *DirectorHandler) Tasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	tasks, err := h.visibility.TasksForDirector(c.Request.Context(), actor)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// ReportedTasks returns tasks managers have submitted.
func (h *DirectorHandler) ReportedTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	tasks, err := h.visibility.ReportedTasks(c.Request.Context(), actor)
	if err != nil {
		apierrors.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}
