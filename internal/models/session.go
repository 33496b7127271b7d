package models

import "time"

// Session stores server-side login sessions. The cookie only carries the
// opaque token; everything else lives in this row.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"` // opaque, e.g. UUID
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
