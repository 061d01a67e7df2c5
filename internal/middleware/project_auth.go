package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/creative-task-api/internal/constants"
	"github.com/yukikurage/creative-task-api/internal/database"
	apierrors "github.com/yukikurage/creative-task-api/internal/errors"
	"github.com/yukikurage/creative-task-api/internal/repository"
	"gorm.io/gorm"
)

// RequireProjectAccess checks that the project in the projectId parameter
// belongs to the actor's organization
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		project, err := repository.NewProjectRepository(database.GetDB()).FindByID(c.Param("projectId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.NotFound(c, "Project not found")
			} else {
				slog.Error("failed to load project", "project_id", c.Param("projectId"), "error", err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		// Return 404 instead of 403 to avoid leaking project existence
		if project.OrganizationID != actor.OrganizationID {
			apierrors.NotFound(c, "Project not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, *project)
		c.Next()
	}
}

// RequireOrganizationScope rejects requests whose organizationId parameter
// names another tenant
func RequireOrganizationScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if c.Param("organizationId") != actor.OrganizationID {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}
		c.Next()
	}
}
