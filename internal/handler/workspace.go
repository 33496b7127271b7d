package handler

import (
	"net/http"
	"strconv"
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

// WorkspaceHandler serves workspace CRUD, membership management and invites.
type WorkspaceHandler struct {
	DB           *gorm.DB
	InviteSecret string
	InviteTTL    time.Duration
	Notify       notify.Publisher
}

func NewWorkspaceHandler(db *gorm.DB, inviteSecret string, inviteTTLHours int, pub notify.Publisher) *WorkspaceHandler {
	if inviteTTLHours <= 0 {
		inviteTTLHours = 72
	}
	return &WorkspaceHandler{
		DB:           db,
		InviteSecret: inviteSecret,
		InviteTTL:    time.Duration(inviteTTLHours) * time.Hour,
		Notify:       pub,
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

type workspaceReq struct {
	Name        string `json:"name" binding:"required,max=128"`
	Description string `json:"description" binding:"max=255"`
}

// Create makes a workspace and its first ADMIN membership in one transaction.
func (h *WorkspaceHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req workspaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	ws := models.Workspace{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerID:     user.ID,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ws).Error; err != nil {
			return err
		}
		member := models.Membership{
			UserID:      user.ID,
			WorkspaceID: ws.ID,
			Role:        models.RoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create workspace")
		return
	}

	util.Success(c, util.Response{"workspace": ws})
}

// ListMine returns workspaces the caller belongs to, with the caller's role.
func (h *WorkspaceHandler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var memberships []models.Membership
	if err := h.DB.Preload("Workspace").
		Where("user_id = ?", user.ID).Find(&memberships).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load workspaces")
		return
	}

	out := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, gin.H{
			"workspace": m.Workspace,
			"role":      m.Role,
		})
	}
	util.Success(c, util.Response{"workspaces": out})
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	role, ok := requireMembership(c, h.DB, user, wsID)
	if !ok {
		return
	}

	var ws models.Workspace
	if err := h.DB.First(&ws, wsID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "workspace not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load workspace")
		}
		return
	}

	util.Success(c, util.Response{"workspace": ws, "role": role})
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageWorkspace, nil) {
		return
	}

	var req workspaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	res := h.DB.Model(&models.Workspace{}).Where("id = ?", wsID).Updates(map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": strings.TrimSpace(req.Description),
	})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update workspace")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "workspace not found")
		return
	}

	util.Success(c, util.Response{"message": "workspace updated"})
}

// Delete removes the workspace and its memberships. Attendance history is
// append-only, so shifts keep their rows with workspace_id nulled.
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageWorkspace, nil) {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AttendanceShift{}).
			Where("workspace_id = ?", wsID).
			Update("workspace_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", wsID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", wsID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", wsID).Delete(&models.Board{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, wsID).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete workspace")
		return
	}

	util.Success(c, util.Response{"message": "workspace deleted"})
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, ok := requireMembership(c, h.DB, user, wsID); !ok {
		return
	}

	var memberships []models.Membership
	if err := h.DB.Preload("User").
		Where("workspace_id = ?", wsID).Find(&memberships).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load members")
		return
	}

	out := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, gin.H{
			"user_id": m.UserID,
			"name":    m.User.Name,
			"email":   m.User.Email,
			"role":    m.Role,
		})
	}
	util.Success(c, util.Response{"members": out})
}

type memberRoleReq struct {
	Role models.Role `json:"role" binding:"required"`
}

func validRole(role models.Role) bool {
	return rbac.Rank(role) > 0
}

func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageMembers, nil) {
		return
	}

	var req memberRoleReq
	if err := c.ShouldBindJSON(&req); err != nil || !validRole(req.Role) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid role")
		return
	}

	res := h.DB.Model(&models.Membership{}).
		Where("user_id = ? AND workspace_id = ?", memberID, wsID).
		Update("role", req.Role)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update member")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "membership not found")
		return
	}

	util.Success(c, util.Response{"message": "member role updated"})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	memberID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageMembers, nil) {
		return
	}

	res := h.DB.Where("user_id = ? AND workspace_id = ?", memberID, wsID).
		Delete(&models.Membership{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to remove member")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "membership not found")
		return
	}

	util.Success(c, util.Response{"message": "member removed"})
}

type inviteReq struct {
	Role models.Role `json:"role" binding:"required"`
}

// CreateInvite signs a join token carrying the workspace and role.
func (h *WorkspaceHandler) CreateInvite(c *gin.Context) {
	user := middleware.CurrentUser(c)
	wsID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !requireWorkspaceAction(c, h.DB, user, wsID, rbac.ActionManageMembers, nil) {
		return
	}

	var req inviteReq
	if err := c.ShouldBindJSON(&req); err != nil || !validRole(req.Role) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid role")
		return
	}

	token, err := util.GenerateInviteToken(h.InviteSecret, wsID, req.Role, h.InviteTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create invite")
		return
	}

	util.Success(c, util.Response{
		"invite_token": token,
		"expires_in_h": int(h.InviteTTL.Hours()),
	})
}

type joinReq struct {
	Token string `json:"token" binding:"required"`
}

// AcceptInvite redeems a join token. Joining twice is a no-op thanks to the
// unique (user, workspace) membership constraint.
func (h *WorkspaceHandler) AcceptInvite(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	claims, err := util.ParseInviteToken(h.InviteSecret, req.Token)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid or expired invite")
		return
	}

	var ws models.Workspace
	if err := h.DB.First(&ws, claims.WorkspaceID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "workspace not found")
		return
	}

	var existing models.Membership
	err = h.DB.Where("user_id = ? AND workspace_id = ?", user.ID, ws.ID).First(&existing).Error
	if err == nil {
		util.Success(c, util.Response{"workspace": ws, "role": existing.Role})
		return
	}
	if err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check membership")
		return
	}

	member := models.Membership{
		UserID:      user.ID,
		WorkspaceID: ws.ID,
		Role:        claims.Role,
	}
	if err := h.DB.Create(&member).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to join workspace")
		return
	}

	_ = h.Notify.PublishJSON(c.Request.Context(), notify.KeyMemberAdded, map[string]any{
		"workspace_id": ws.ID,
		"user_id":      user.ID,
		"role":         member.Role,
	})

	util.Success(c, util.Response{"workspace": ws, "role": member.Role})
}
