package handler

import (
	"net/http"
	"strings"
	"time"

	"teamtrack/internal/auth"
	"teamtrack/internal/middleware"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type updateProfileReq struct {
	Name      string `json:"name" binding:"max=64"`
	Title     string `json:"title" binding:"max=64"`
	AvatarURL string `json:"avatar_url" binding:"max=255"`
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile updates the current user's display fields.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}

		updates := map[string]interface{}{}
		if name := strings.TrimSpace(req.Name); name != "" {
			updates["name"] = name
		}
		updates["title"] = strings.TrimSpace(req.Title)
		updates["avatar_url"] = strings.TrimSpace(req.AvatarURL)

		if err := db.Model(user).Updates(updates).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
			return
		}

		util.Success(c, util.Response{
			"user": gin.H{
				"id":         user.ID,
				"name":       user.Name,
				"email":      user.Email,
				"title":      user.Title,
				"avatar_url": user.AvatarURL,
			},
		})
	}
}

// ChangePassword verifies the old password, stores the new hash and revokes
// every other live session of the user.
func ChangePassword(db *gorm.DB, bcryptCost int, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}

		var req changePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}

		if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "old password is wrong")
			return
		}
		if !util.IsStrongPassword(req.NewPassword) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 chars with upper, lower and digit")
			return
		}

		hash, err := util.HashPassword(req.NewPassword, bcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}
		if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		_ = auth.RevokeOtherSessions(db, user.ID, auth.TokenFromRequest(c, cookieName))

		util.Success(c, util.Response{"message": "password changed"})
	}
}

// DeactivateAccount soft-disables the account; history is kept.
func DeactivateAccount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			return
		}
		if user.DeactivatedAt != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "account already deactivated")
			return
		}

		now := time.Now()
		if err := db.Model(user).Update("deactivated_at", &now).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to deactivate account")
			return
		}
		_ = auth.RevokeOtherSessions(db, user.ID, "")

		util.Success(c, util.Response{"message": "account deactivated"})
	}
}
