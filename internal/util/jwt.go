package util

import (
	"time"

	"teamtrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// InviteClaims is the payload of a signed workspace invite token.
type InviteClaims struct {
	WorkspaceID uint        `json:"workspace_id"`
	Role        models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateInviteToken signs an invite for joining a workspace with a role.
func GenerateInviteToken(secret string, workspaceID uint, role models.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	now := time.Now()
	claims := &InviteClaims{
		WorkspaceID: workspaceID,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseInviteToken parses and validates an invite token.
func ParseInviteToken(secret, tokenStr string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &InviteClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
