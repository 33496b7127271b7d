package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"teamtrack/internal/models"
	"teamtrack/internal/notify"

	"github.com/gin-gonic/gin"
)

func TestWorkspaceInviteFlow(t *testing.T) {
	db := testDB(t)

	admin := &models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x"}
	joiner := &models.User{Name: "Joiner", Email: "joiner@example.com", PasswordHash: "x"}
	for _, u := range []*models.User{admin, joiner} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	ws := &models.Workspace{Name: "Platform", OwnerID: admin.ID}
	if err := db.Create(ws).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	if err := db.Create(&models.Membership{UserID: admin.ID, WorkspaceID: ws.ID, Role: models.RoleAdmin}).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	gin.SetMode(gin.TestMode)
	h := NewWorkspaceHandler(db, "test-secret", 1, notify.Noop{})

	adminR := gin.New()
	adminR.POST("/workspaces/:id/invites", injectUser(admin), h.CreateInvite)
	joinerR := gin.New()
	joinerR.POST("/workspaces/join", injectUser(joiner), h.AcceptInvite)

	w := postJSON(t, adminR, "/workspaces/1/invites", gin.H{"role": models.RoleTeamLead})
	if w.Code != http.StatusOK {
		t.Fatalf("create invite status = %d, body %s", w.Code, w.Body.String())
	}
	var inviteResp struct {
		Data struct {
			InviteToken string `json:"invite_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &inviteResp); err != nil {
		t.Fatalf("decode invite response: %v", err)
	}
	if inviteResp.Data.InviteToken == "" {
		t.Fatal("no invite token returned")
	}

	w = postJSON(t, joinerR, "/workspaces/join", gin.H{"token": inviteResp.Data.InviteToken})
	if w.Code != http.StatusOK {
		t.Fatalf("accept invite status = %d, body %s", w.Code, w.Body.String())
	}

	var member models.Membership
	if err := db.Where("user_id = ? AND workspace_id = ?", joiner.ID, ws.ID).First(&member).Error; err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if member.Role != models.RoleTeamLead {
		t.Errorf("joined role = %s, want TEAM_LEAD", member.Role)
	}

	// redeeming the same token again is a no-op, not an error
	w = postJSON(t, joinerR, "/workspaces/join", gin.H{"token": inviteResp.Data.InviteToken})
	if w.Code != http.StatusOK {
		t.Fatalf("second accept status = %d, body %s", w.Code, w.Body.String())
	}
	var count int64
	if err := db.Model(&models.Membership{}).
		Where("user_id = ? AND workspace_id = ?", joiner.ID, ws.ID).Count(&count).Error; err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if count != 1 {
		t.Errorf("membership count = %d, want 1", count)
	}

	// garbage tokens are rejected
	w = postJSON(t, joinerR, "/workspaces/join", gin.H{"token": "not-a-token"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("garbage token status = %d, want 400", w.Code)
	}

	// a non-manager cannot mint invites
	joinerInviteR := gin.New()
	joinerInviteR.POST("/workspaces/:id/invites", injectUser(joiner), h.CreateInvite)
	w = postJSON(t, joinerInviteR, "/workspaces/1/invites", gin.H{"role": models.RoleEmployee})
	if w.Code != http.StatusForbidden {
		t.Errorf("team lead invite status = %d, want 403", w.Code)
	}
}
