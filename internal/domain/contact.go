package domain

import (
	"time"

	"github.com/rolo-app/rolo/pkg/names"
)

type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	FirstName string    `gorm:"size:128;not null" json:"first_name"`
	LastName  string    `gorm:"size:128;not null;default:''" json:"last_name"`
	Location  string    `gorm:"not null;default:''" json:"location"`
	Notes     string    `gorm:"not null;default:''" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Name is the computed display name.
func (c Contact) Name() string {
	return names.Combine(c.FirstName, c.LastName)
}
