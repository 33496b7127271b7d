package handler

import (
	"net/http"
	"strconv"

	"teamtrack/internal/models"
	"teamtrack/internal/rbac"
	"teamtrack/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// pageParam reads the 1-based ?page= query parameter.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// requireWorkspaceAction resolves the caller's role in one workspace and runs
// the policy evaluator. On deny it writes the 403 envelope (with the specific
// reason) and returns false; the caller just returns.
func requireWorkspaceAction(c *gin.Context, db *gorm.DB, user *models.User, workspaceID uint, action rbac.Action, taskOwnerID *uint) bool {
	role, found, err := rbac.ResolveRole(db, user.ID, workspaceID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve role")
		return false
	}
	if !found {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you are not a member of this workspace")
		return false
	}
	decision := rbac.CanPerform(role, action, rbac.Context{ActorID: user.ID, TaskOwnerID: taskOwnerID})
	if !decision.Allowed {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, decision.Reason)
		return false
	}
	return true
}

// requireMembership gates plain read access: any role in the workspace will do.
func requireMembership(c *gin.Context, db *gorm.DB, user *models.User, workspaceID uint) (models.Role, bool) {
	role, found, err := rbac.ResolveRole(db, user.ID, workspaceID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve role")
		return "", false
	}
	if !found {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you are not a member of this workspace")
		return "", false
	}
	return role, true
}

// requireGlobalAction gates pages that are not workspace-scoped (aggregate
// reports, the sweep trigger). The global role is the caller's most privileged
// role across all memberships.
func requireGlobalAction(c *gin.Context, db *gorm.DB, user *models.User, action rbac.Action) bool {
	role, err := rbac.ResolveGlobalRole(db, user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to resolve role")
		return false
	}
	decision := rbac.CanPerform(role, action, rbac.Context{ActorID: user.ID})
	if !decision.Allowed {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, decision.Reason)
		return false
	}
	return true
}
