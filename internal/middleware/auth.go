package middleware

import (
	"net/http"

	"teamtrack/internal/auth"
	"teamtrack/internal/models"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const currentUserKey = "currentUser"

// AuthMiddleware resolves the session cookie to a user and stores it in the
// request context. A nil resolution is always a 401; the resolver never says
// why a token was bad.
func AuthMiddleware(db *gorm.DB, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.ResolveCurrentUser(c, db, cookieName)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user placed in the context by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
