package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/database"
	apierrors "github.com/yukikurage/creative-task-api/internal/errors"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"gorm.io/gorm"
)

// RequireTaskAccess checks if the actor may open the task in the taskId
// parameter. Tasks in other organizations are reported as missing.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := repository.NewTaskRepository(database.GetDB()).FindByID(c.Param("taskId"), "Designers")
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				slog.Error("failed to load task", "task_id", c.Param("taskId"), "error", err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		// Return 404 instead of 403 to avoid leaking task existence
		if !access.CanAccess(actor, task) {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}
