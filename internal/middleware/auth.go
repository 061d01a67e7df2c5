package middleware

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/creative-task-api/internal/access"
	"github.com/yukikurage/creative-task-api/internal/constants"
	apierrors "github.com/yukikurage/creative-task-api/internal/errors"
	"github.com/yukikurage/creative-task-api/internal/models"
)

// RequireAuth builds the actor from the session written by the identity
// service. A session without a user or organization is unauthenticated.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID := sessionString(session, constants.ContextKeyUserID)
		orgID := sessionString(session, constants.ContextKeyOrganizationID)
		if userID == "" || orgID == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		isAdmin, _ := session.Get(constants.ContextKeyIsAdmin).(bool)
		actor := access.Actor{
			UserID:         userID,
			OrganizationID: orgID,
			Role:           models.ParseRole(sessionString(session, constants.ContextKeyRole)),
			Team:           models.Team(sessionString(session, constants.ContextKeyTeam)),
			IsAdmin:        isAdmin,
		}

		// Store actor in context for easy access in handlers
		c.Set(constants.ContextKeyActor, actor)
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

func sessionString(session sessions.Session, key string) string {
	switch v := session.Get(key).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// GetActor retrieves the current actor from context
func GetActor(c *gin.Context) (access.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return access.Actor{}, false
	}
	actor, ok := value.(access.Actor)
	return actor, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	actor, ok := GetActor(c)
	if !ok {
		return "", false
	}
	return actor.UserID, true
}
