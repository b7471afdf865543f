package model

import (
	"time"

	"github.com/google/uuid"
)

// ActionLog is the write-only audit trail: who did what, when. Rows are never updated.
type ActionLog struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Action   string    `gorm:"type:text;not null" json:"action"`
	LoggedAt time.Time `gorm:"not null" json:"logged_at"`
}
