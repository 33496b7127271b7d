package rbac

import (
	"fmt"

	"teamtrack/internal/models"
)

// Action is a policy-gated operation.
type Action string

const (
	ActionEditTask         Action = "edit-task"
	ActionDeleteTask       Action = "delete-task"
	ActionChangeTaskStatus Action = "change-task-status"
	ActionManageMembers    Action = "manage-members"
	ActionManageWorkspace  Action = "manage-workspace-settings"
	ActionViewAdminReport  Action = "view-admin-report"
)

// Context carries the already-resolved identities a decision may need.
// Only the EMPLOYEE ownership rule reads it.
type Context struct {
	ActorID     uint
	TaskOwnerID *uint
}

// Decision is an allow/deny result. Every deny carries a user-facing reason
// naming the role/action pair, so the UI can explain a disabled action.
type Decision struct {
	Allowed bool
	Reason  string
}

var allowed = Decision{Allowed: true}

// decision table (role x action); the EMPLOYEE ownership rule and the
// EMPLOYEE status-approval rule are handled before this table is consulted.
var policy = map[models.Role]map[Action]bool{
	models.RoleAdmin: {
		ActionEditTask: true, ActionDeleteTask: true, ActionChangeTaskStatus: true,
		ActionManageMembers: true, ActionManageWorkspace: true, ActionViewAdminReport: true,
	},
	models.RoleProjectManager: {
		ActionEditTask: true, ActionDeleteTask: true, ActionChangeTaskStatus: true,
		ActionManageMembers: true, ActionManageWorkspace: true, ActionViewAdminReport: true,
	},
	models.RoleManagement: {
		ActionViewAdminReport: true,
	},
	models.RoleTeamLead: {
		ActionEditTask: true, ActionChangeTaskStatus: true,
	},
	models.RoleEmployee: {},
}

var actionLabel = map[Action]string{
	ActionEditTask:         "edit tasks",
	ActionDeleteTask:       "delete tasks",
	ActionChangeTaskStatus: "change task status",
	ActionManageMembers:    "manage workspace members",
	ActionManageWorkspace:  "manage workspace settings",
	ActionViewAdminReport:  "view admin reports",
}

// CanPerform evaluates the policy table for a resolved role. It is pure: all
// lookups happened before this call.
func CanPerform(role models.Role, action Action, ctx Context) Decision {
	if role == models.RoleEmployee {
		switch action {
		case ActionEditTask:
			if ctx.TaskOwnerID != nil && *ctx.TaskOwnerID == ctx.ActorID {
				return allowed
			}
			return Decision{Reason: "employees can only edit tasks assigned to them"}
		case ActionChangeTaskStatus:
			return Decision{Reason: "status changes by employees require approval from a team lead or manager"}
		}
	}

	if policy[role][action] {
		return allowed
	}
	return Decision{Reason: denyReason(role, action)}
}

func denyReason(role models.Role, action Action) string {
	label := actionLabel[action]
	if label == "" {
		label = string(action)
	}
	if _, known := roleRank[role]; !known {
		return fmt.Sprintf("you have no role in this workspace and may not %s", label)
	}
	return fmt.Sprintf("role %s is not permitted to %s", role, label)
}
