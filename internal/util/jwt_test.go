package util

import (
	"testing"
	"time"

	"teamtrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestInviteToken_RoundTrip(t *testing.T) {
	token, err := GenerateInviteToken("test-secret", 42, models.RoleTeamLead, time.Hour)
	if err != nil {
		t.Fatalf("GenerateInviteToken: %v", err)
	}

	claims, err := ParseInviteToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseInviteToken: %v", err)
	}
	if claims.WorkspaceID != 42 {
		t.Errorf("workspace id = %d, want 42", claims.WorkspaceID)
	}
	if claims.Role != models.RoleTeamLead {
		t.Errorf("role = %s, want TEAM_LEAD", claims.Role)
	}
}

func TestInviteToken_WrongSecret(t *testing.T) {
	token, err := GenerateInviteToken("test-secret", 42, models.RoleEmployee, time.Hour)
	if err != nil {
		t.Fatalf("GenerateInviteToken: %v", err)
	}
	if _, err := ParseInviteToken("other-secret", token); err == nil {
		t.Error("token verified with the wrong secret")
	}
}

func TestInviteToken_Expired(t *testing.T) {
	claims := &InviteClaims{
		WorkspaceID: 42,
		Role:        models.RoleEmployee,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ParseInviteToken("test-secret", token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestInviteToken_Garbage(t *testing.T) {
	if _, err := ParseInviteToken("test-secret", "not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}
