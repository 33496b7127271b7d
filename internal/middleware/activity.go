package middleware

import (
	"bytes"
	"io"

	"teamtrack/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ActivityMiddleware records authenticated requests for the audit trail.
// Logging is best-effort: a failed insert never fails the request.
func ActivityMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		user := CurrentUser(c)
		if user == nil {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		entry := models.ActivityLog{
			UserID:    &user.ID,
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		_ = db.Create(&entry).Error
	}
}
