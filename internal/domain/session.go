package domain

import "time"

// Session maps an opaque token to a user. The token is the primary key;
// rows past ExpiresAt are treated as nonexistent and deleted on next access.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}
