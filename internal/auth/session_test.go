package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"teamtrack/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const cookieName = "tt_session"

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Name: "Dana", Email: "dana@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func requestCtx(modify func(*http.Request)) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if modify != nil {
		modify(c.Request)
	}
	return c
}

func TestTokenFromRequest_Sources(t *testing.T) {
	c := requestCtx(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")
	})
	if got := TokenFromRequest(c, cookieName); got != "from-cookie" {
		t.Errorf("token = %q, cookie should win", got)
	}

	c = requestCtx(func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer from-header")
	})
	if got := TokenFromRequest(c, cookieName); got != "from-header" {
		t.Errorf("token = %q, want bearer value", got)
	}

	c = requestCtx(func(r *http.Request) {
		r.URL.RawQuery = "token=from-query"
	})
	if got := TokenFromRequest(c, cookieName); got != "from-query" {
		t.Errorf("token = %q, want query value", got)
	}

	if got := TokenFromRequest(requestCtx(nil), cookieName); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}

func TestResolveCurrentUser_ValidSession(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)

	sess, err := CreateSession(db, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	c := requestCtx(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
	})
	got := ResolveCurrentUser(c, db, cookieName)
	if got == nil || got.ID != user.ID {
		t.Fatalf("ResolveCurrentUser = %v, want user %d", got, user.ID)
	}
}

func TestResolveCurrentUser_FailsClosed(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)

	expired := &models.Session{Token: "expired-token", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	revoked := &models.Session{Token: "revoked-token", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), Revoked: true}
	for _, s := range []*models.Session{expired, revoked} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	cases := []struct {
		name  string
		token string
	}{
		{"absent token", ""},
		{"unknown token", "never-issued"},
		{"expired token", "expired-token"},
		{"revoked token", "revoked-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := requestCtx(func(r *http.Request) {
				if tc.token != "" {
					r.AddCookie(&http.Cookie{Name: cookieName, Value: tc.token})
				}
			})
			if got := ResolveCurrentUser(c, db, cookieName); got != nil {
				t.Errorf("resolved user %d, want nil", got.ID)
			}
		})
	}
}

func TestResolveCurrentUser_DeactivatedAccount(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	sess, err := CreateSession(db, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	now := time.Now()
	if err := db.Model(user).Update("deactivated_at", &now).Error; err != nil {
		t.Fatalf("deactivate user: %v", err)
	}

	c := requestCtx(func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: sess.Token})
	})
	if got := ResolveCurrentUser(c, db, cookieName); got != nil {
		t.Error("deactivated account still resolves")
	}
}

func TestRevokeOtherSessions(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)

	keep, err := CreateSession(db, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	other, err := CreateSession(db, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := RevokeOtherSessions(db, user.ID, keep.Token); err != nil {
		t.Fatalf("RevokeOtherSessions: %v", err)
	}

	var kept, revoked models.Session
	if err := db.First(&kept, "token = ?", keep.Token).Error; err != nil {
		t.Fatalf("reload kept session: %v", err)
	}
	if err := db.First(&revoked, "token = ?", other.Token).Error; err != nil {
		t.Fatalf("reload other session: %v", err)
	}
	if kept.Revoked {
		t.Error("current session was revoked")
	}
	if !revoked.Revoked {
		t.Error("other session survived")
	}
}
