package auth

import (
	"strings"
	"time"

	"teamtrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenFromRequest extracts the opaque session token. Cookie first, then
// Authorization: Bearer, then ?token= for downloads that cannot set headers.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}

// ResolveCurrentUser maps a request to a user, or nil for anonymous requests.
// Absent, unknown, expired and revoked tokens all look the same to the caller,
// and store failures degrade to nil as well: an auth check never fails open.
func ResolveCurrentUser(c *gin.Context, db *gorm.DB, cookieName string) *models.User {
	token := TokenFromRequest(c, cookieName)
	if token == "" {
		return nil
	}

	var sess models.Session
	if err := db.Where("token = ?", token).First(&sess).Error; err != nil {
		return nil
	}
	if sess.Revoked || !sess.ExpiresAt.After(time.Now()) {
		return nil
	}

	var user models.User
	if err := db.First(&user, sess.UserID).Error; err != nil {
		return nil
	}
	if user.DeactivatedAt != nil {
		return nil
	}
	return &user
}

// CreateSession mints a fresh opaque token for the user. A user may hold any
// number of live sessions (multi-device).
func CreateSession(db *gorm.DB, userID uint, ttl time.Duration) (*models.Session, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sess := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(sess).Error; err != nil {
		return nil, err
	}
	return sess, nil
}

// RevokeSession invalidates one token (logout).
func RevokeSession(db *gorm.DB, token string) error {
	return db.Model(&models.Session{}).Where("token = ?", token).Update("revoked", true).Error
}

// RevokeOtherSessions invalidates every live session of the user except the
// given token. Used after a password change.
func RevokeOtherSessions(db *gorm.DB, userID uint, keepToken string) error {
	return db.Model(&models.Session{}).
		Where("user_id = ? AND token <> ? AND revoked = ?", userID, keepToken, false).
		Update("revoked", true).Error
}
