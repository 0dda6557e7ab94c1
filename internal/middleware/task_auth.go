package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/constants"
	apierrors "github.com/yukikurage/task-hierarchy-api/internal/errors"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

// TaskFinder loads a task on behalf of an actor, enforcing visibility.
type TaskFinder interface {
	GetTask(ctx context.Context, actor services.Actor, taskID uint64) (*models.Task, error)
}

// RequireTaskAccess loads the task named by the :id parameter and stores it
// in the context. Callers that may not see the task get a 403.
func RequireTaskAccess(finder TaskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := finder.GetTask(c.Request.Context(), actor, taskID)
		if err != nil {
			apierrors.RespondServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask returns the task loaded by RequireTaskAccess.
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
