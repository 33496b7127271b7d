package handler

import (
	"net/http"

	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ActivityHandler exposes the audit trail to admin-report roles.
type ActivityHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewActivityHandler(db *gorm.DB, pageSize int) *ActivityHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ActivityHandler{DB: db, PageSize: pageSize}
}

func (h *ActivityHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !requireGlobalAction(c, h.DB, user, rbac.ActionViewAdminReport) {
		return
	}

	qb := h.DB.Model(&models.ActivityLog{})
	if userID := c.Query("user_id"); userID != "" {
		qb = qb.Where("user_id = ?", userID)
	}

	page := pageParam(c)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count activity")
		return
	}
	var entries []models.ActivityLog
	if err := qb.Order("created_at DESC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&entries).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load activity")
		return
	}

	util.Success(c, util.Response{"activity": entries, "total": total, "page": page})
}
