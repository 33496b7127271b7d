package handler

import (
	"net/http"
	"strings"

	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BugHandler serves the bug tracker. Reporters may always edit their own
// reports; otherwise the task policy applies.
type BugHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewBugHandler(db *gorm.DB, pageSize int) *BugHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &BugHandler{DB: db, PageSize: pageSize}
}

func (h *BugHandler) loadBug(c *gin.Context, wsID uint) (*models.Bug, bool) {
	bugID, ok := paramID(c, "bug_id")
	if !ok {
		return nil, false
	}
	var bug models.Bug
	if err := h.DB.Where("id = ? AND workspace_id = ?", bugID, wsID).First(&bug).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "bug not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load bug")
		}
		return nil, false
	}
	return &bug, true
}

type bugReq struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	TaskID      *uint  `json:"task_id"`
	AssigneeID  *uint  `json:"assignee_id"`
}

func (h *BugHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	var req bugReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Severity == "" {
		req.Severity = models.BugSeverityMedium
	}
	if err := util.ValidateOneOf(req.Severity,
		models.BugSeverityLow, models.BugSeverityMedium,
		models.BugSeverityHigh, models.BugSeverityCritical); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid severity")
		return
	}

	bug := models.Bug{
		WorkspaceID: wsID,
		TaskID:      req.TaskID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Severity:    req.Severity,
		Status:      models.BugStatusOpen,
		ReporterID:  user.ID,
		AssigneeID:  req.AssigneeID,
	}
	if err := h.DB.Create(&bug).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create bug")
		return
	}

	util.Success(c, util.Response{"bug": bug})
}

func (h *BugHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	qb := h.DB.Model(&models.Bug{}).Where("workspace_id = ?", wsID)
	if status := c.Query("status"); status != "" {
		qb = qb.Where("status = ?", status)
	}
	if severity := c.Query("severity"); severity != "" {
		qb = qb.Where("severity = ?", severity)
	}

	page := pageParam(c)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count bugs")
		return
	}
	var bugs []models.Bug
	if err := qb.Order("created_at DESC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&bugs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load bugs")
		return
	}

	util.Success(c, util.Response{"bugs": bugs, "total": total, "page": page})
}

func (h *BugHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}
	bug, ok := h.loadBug(c, wsID)
	if !ok {
		return
	}
	util.Success(c, util.Response{"bug": bug})
}

// mayEditBug lets the reporter edit their own report; everyone else needs the
// edit-task privilege.
func (h *BugHandler) mayEditBug(c *gin.Context, user *models.User, wsID uint, bug *models.Bug) bool {
	if bug.ReporterID == user.ID {
		if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
			return false
		}
		return true
	}
	return requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionEditTask, nil)
}

func (h *BugHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	bug, ok := h.loadBug(c, wsID)
	if !ok {
		return
	}
	if !h.mayEditBug(c, user, wsID, bug) {
		return
	}

	var req bugReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	updates := map[string]interface{}{
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"task_id":     req.TaskID,
		"assignee_id": req.AssigneeID,
	}
	if req.Severity != "" {
		if err := util.ValidateOneOf(req.Severity,
			models.BugSeverityLow, models.BugSeverityMedium,
			models.BugSeverityHigh, models.BugSeverityCritical); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid severity")
			return
		}
		updates["severity"] = req.Severity
	}

	if err := h.DB.Model(bug).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update bug")
		return
	}

	util.Success(c, util.Response{"bug": bug})
}

type bugStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *BugHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	bug, ok := h.loadBug(c, wsID)
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionChangeTaskStatus, nil) {
		return
	}

	var req bugStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateOneOf(req.Status,
		models.BugStatusOpen, models.BugStatusInProgress,
		models.BugStatusResolved, models.BugStatusClosed); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid status")
		return
	}

	if err := h.DB.Model(bug).Update("status", req.Status).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update status")
		return
	}

	util.Success(c, util.Response{"bug": bug})
}

func (h *BugHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	bug, ok := h.loadBug(c, wsID)
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionDeleteTask, nil) {
		return
	}

	if err := h.DB.Delete(bug).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete bug")
		return
	}

	util.Success(c, util.Response{"message": "bug deleted"})
}
