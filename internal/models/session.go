package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshSession is one issued refresh token. Sessions are deleted on
// logout and on refresh rotation.
type RefreshSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RefreshToken uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"refresh_token"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExpiresIn    int64     `gorm:"not null" json:"expires_in"` // unix seconds
	CreatedAt    time.Time `json:"created_at"`
}

func (RefreshSession) TableName() string {
	return "refresh_sessions"
}
