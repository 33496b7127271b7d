package handler

import (
	"net/http"
	"strings"
	"time"

	"teamtrack/internal/middleware"
	"teamtrack/internal/models"
	"teamtrack/internal/notify"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TaskHandler serves task CRUD inside a workspace. Every mutating route goes
// through the policy evaluator; employees only get past it on their own tasks.
type TaskHandler struct {
	DB       *gorm.DB
	PageSize int
	Notify   notify.Publisher
}

func NewTaskHandler(db *gorm.DB, pageSize int, pub notify.Publisher) *TaskHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &TaskHandler{DB: db, PageSize: pageSize, Notify: pub}
}

func (h *TaskHandler) loadTask(c *gin.Context, wsID uint) (*models.Task, bool) {
	taskID, ok := paramID(c, "task_id")
	if !ok {
		return nil, false
	}
	var task models.Task
	if err := h.DB.Where("id = ? AND workspace_id = ?", taskID, wsID).First(&task).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "task not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load task")
		}
		return nil, false
	}
	return &task, true
}

type taskReq struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description"`
	BoardID     *uint   `json:"board_id"`
	Priority    string  `json:"priority"`
	OwnerID     *uint   `json:"owner_id"`
	DueDate     *string `json:"due_date"` // YYYY-MM-DD
	Position    int     `json:"position"`
}

func (r *taskReq) dueDate(c *gin.Context) (*time.Time, bool) {
	if r.DueDate == nil || *r.DueDate == "" {
		return nil, true
	}
	d, err := util.ValidateDate(*r.DueDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return nil, false
	}
	return &d, true
}

// Create adds a task. Any workspace member can create; the creator becomes
// the owner unless an assignee is given.
func (h *TaskHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if err := util.ValidateOneOf(req.Priority,
		models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid priority")
		return
	}
	due, ok := req.dueDate(c)
	if !ok {
		return
	}

	owner := req.OwnerID
	if owner == nil {
		owner = &user.ID
	}

	task := models.Task{
		WorkspaceID: wsID,
		BoardID:     req.BoardID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    req.Priority,
		OwnerID:     owner,
		CreatorID:   user.ID,
		DueDate:     due,
		Position:    req.Position,
	}
	if err := h.DB.Create(&task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create task")
		return
	}

	if req.OwnerID != nil && *req.OwnerID != user.ID {
		_ = h.Notify.PublishJSON(c.Request.Context(), notify.KeyTaskAssigned, map[string]any{
			"task_id": task.ID, "workspace_id": wsID, "assignee_id": *req.OwnerID, "assigned_by": user.ID,
		})
	}

	util.Success(c, util.Response{"task": task})
}

// List returns tasks with optional board/status/owner filters and paging.
func (h *TaskHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	qb := h.DB.Model(&models.Task{}).Where("workspace_id = ?", wsID)
	if boardID := c.Query("board_id"); boardID != "" {
		qb = qb.Where("board_id = ?", boardID)
	}
	if status := c.Query("status"); status != "" {
		qb = qb.Where("status = ?", status)
	}
	if ownerID := c.Query("owner_id"); ownerID != "" {
		qb = qb.Where("owner_id = ?", ownerID)
	}

	page := pageParam(c)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count tasks")
		return
	}
	var tasks []models.Task
	if err := qb.Order("position ASC, id ASC").
		Limit(h.PageSize).Offset((page - 1) * h.PageSize).
		Find(&tasks).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load tasks")
		return
	}

	util.Success(c, util.Response{
		"tasks": tasks,
		"total": total,
		"page":  page,
	})
}

func (h *TaskHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}
	task, ok := h.loadTask(c, wsID)
	if !ok {
		return
	}
	util.Success(c, util.Response{"task": task})
}

func (h *TaskHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, ok := h.loadTask(c, wsID)
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionEditTask, task.OwnerID) {
		return
	}

	var req taskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	due, ok := req.dueDate(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{
		"title":       strings.TrimSpace(req.Title),
		"description": req.Description,
		"board_id":    req.BoardID,
		"due_date":    due,
		"position":    req.Position,
	}
	if req.Priority != "" {
		if err := util.ValidateOneOf(req.Priority,
			models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid priority")
			return
		}
		updates["priority"] = req.Priority
	}

	if err := h.DB.Model(task).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update task")
		return
	}

	util.Success(c, util.Response{"task": task})
}

type taskStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, ok := h.loadTask(c, wsID)
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionChangeTaskStatus, task.OwnerID) {
		return
	}

	var req taskStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateOneOf(req.Status,
		models.TaskStatusTodo, models.TaskStatusInProgress,
		models.TaskStatusInReview, models.TaskStatusDone); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid status")
		return
	}

	if err := h.DB.Model(task).Update("status", req.Status).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update status")
		return
	}

	util.Success(c, util.Response{"task": task})
}

type taskAssignReq struct {
	OwnerID *uint `json:"owner_id"`
}

// Assign changes the task owner; assignment is an edit under the policy.
func (h *TaskHandler) Assign(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, ok := h.loadTask(c, wsID)
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionEditTask, task.OwnerID) {
		return
	}

	var req taskAssignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	if req.OwnerID != nil {
		if _, found, err := rbac.ResolveRole(h.DB, *req.OwnerID, wsID); err != nil || !found {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "assignee is not a workspace member")
			return
		}
	}

	if err := h.DB.Model(task).Update("owner_id", req.OwnerID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to assign task")
		return
	}

	if req.OwnerID != nil && *req.OwnerID != user.ID {
		_ = h.Notify.PublishJSON(c.Request.Context(), notify.KeyTaskAssigned, map[string]any{
			"task_id": task.ID, "workspace_id": wsID, "assignee_id": *req.OwnerID, "assigned_by": user.ID,
		})
	}

	util.Success(c, util.Response{"task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	task, ok := h.loadTask(c, wsID)
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionDeleteTask, task.OwnerID) {
		return
	}

	if err := h.DB.Delete(task).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete task")
		return
	}

	util.Success(c, util.Response{"message": "task deleted"})
}
