package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-dashboard-api/internal/constants"
	apierrors "github.com/yukikurage/project-dashboard-api/internal/errors"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/services"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)
		role, _ := session.Get(constants.ContextKeyUserRole).(string)

		if userID == nil || !models.Role(role).Valid() {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store the viewer in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyUserRole, models.Role(role))
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not listed.
// It must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := GetViewer(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		for _, r := range roles {
			if viewer.Role == r {
				c.Next()
				return
			}
		}
		apierrors.Forbidden(c, "This action is not available for your role")
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetViewer retrieves the current user ID and role from context
func GetViewer(c *gin.Context) (services.Viewer, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return services.Viewer{}, false
	}

	raw, _ := c.Get(constants.ContextKeyUserRole)

	var role models.Role
	switch v := raw.(type) {
	case models.Role:
		role = v
	case string:
		role = models.Role(v)
	}
	if !role.Valid() {
		return services.Viewer{}, false
	}

	return services.Viewer{ID: userID, Role: role}, true
}

// SetSession stores the authenticated user in the session.
func SetSession(c *gin.Context, user models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.ContextKeyUserRole, string(user.Role))
	return session.Save()
}

// ClearSession logs the current user out.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
