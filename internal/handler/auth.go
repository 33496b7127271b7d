package handler

import (
	"net/http"
	"strings"
	"time"

	"teamtrack/internal/auth"
	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves register/login/logout.
type AuthHandler struct {
	DB           *gorm.DB
	BcryptCost   int
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
}

func NewAuthHandler(db *gorm.DB, bcryptCost int, ttlHours int, cookieName string, cookieSecure bool) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:           db,
		BcryptCost:   bcryptCost,
		SessionTTL:   time.Duration(ttlHours) * time.Hour,
		CookieName:   cookieName,
		CookieSecure: cookieSecure,
	}
}

type registerReq struct {
	Name            string `json:"name" binding:"required,max=64"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if !util.IsStrongPassword(req.Password) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 chars with upper, lower and digit")
		return
	}
	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "passwords do not match")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(email) = ?", req.Email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check email")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email already registered")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("LOWER(email) = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong email or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load user")
		}
		return
	}

	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, try again later")
		return
	}
	if user.DeactivatedAt != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account is deactivated")
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		// 5 consecutive failures lock the account for 10 minutes
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= 5 {
			lockUntil := now.Add(10 * time.Minute)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		_ = h.DB.Save(&user).Error
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong email or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	_ = h.DB.Save(&user).Error

	sess, err := auth.CreateSession(h.DB, user.ID, h.SessionTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create session")
		return
	}

	c.SetCookie(h.CookieName, sess.Token, int(h.SessionTTL.Seconds()), "/", "", h.CookieSecure, true)

	util.Success(c, util.Response{
		"token": sess.Token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := auth.TokenFromRequest(c, h.CookieName)
	if token != "" {
		_ = auth.RevokeSession(h.DB, token)
	}
	c.SetCookie(h.CookieName, "", -1, "/", "", h.CookieSecure, true)
	util.Success(c, util.Response{"message": "signed out"})
}

// Me returns the current user plus the global role driving navigation.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	globalRole, err := rbac.ResolveGlobalRole(h.DB, user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve role")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"title":      user.Title,
			"avatar_url": user.AvatarURL,
			"created_at": user.CreatedAt,
		},
		"global_role": globalRole,
	})
}
