package domain

import "time"

// Interaction is a logged, optionally rated event involving zero or more
// contacts. Rating nil means no rating was recorded.
type Interaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Rating    *int      `json:"rating"`
	Notes     string    `gorm:"not null;default:''" json:"notes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InteractionContact is one (interaction, contact) association row. The pair
// is the primary key; deleting either side cascades into this table.
type InteractionContact struct {
	InteractionID uint        `gorm:"primaryKey" json:"interaction_id"`
	ContactID     uint        `gorm:"primaryKey" json:"contact_id"`
	Interaction   Interaction `gorm:"foreignKey:InteractionID;constraint:OnDelete:CASCADE" json:"-"`
	Contact       Contact     `gorm:"foreignKey:ContactID;constraint:OnDelete:CASCADE" json:"-"`
}
