package rbac

import (
	"errors"

	"teamtrack/internal/models"

	"gorm.io/gorm"
)

// privilege order: ADMIN > PROJECT_MANAGER > MANAGEMENT > TEAM_LEAD > EMPLOYEE
var roleRank = map[models.Role]int{
	models.RoleEmployee:       1,
	models.RoleTeamLead:       2,
	models.RoleManagement:     3,
	models.RoleProjectManager: 4,
	models.RoleAdmin:          5,
}

// Rank returns the privilege rank of a role; unknown roles rank lowest.
func Rank(role models.Role) int {
	return roleRank[role]
}

// ResolveRole looks up the user's membership role in one workspace.
// found is false when the user has no standing there; store errors propagate.
func ResolveRole(db *gorm.DB, userID, workspaceID uint) (role models.Role, found bool, err error) {
	var m models.Membership
	err = db.Where("user_id = ? AND workspace_id = ?", userID, workspaceID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.Role, true, nil
}

// ResolveGlobalRole scans all memberships of the user and returns the
// highest-privilege role found. A user in no workspace is an EMPLOYEE, so an
// empty membership set never elevates anyone.
func ResolveGlobalRole(db *gorm.DB, userID uint) (models.Role, error) {
	var memberships []models.Membership
	if err := db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return models.RoleEmployee, err
	}

	best := models.RoleEmployee
	for _, m := range memberships {
		if roleRank[m.Role] > roleRank[best] {
			best = m.Role
		}
	}
	return best, nil
}
