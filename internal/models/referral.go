package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralEdge is one ancestor-descendant relationship discovered while
// walking the sponsor chain upward. Level is the chain distance from the
// referral to the owner, capped at 10.
type ReferralEdge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_referral_pair" json:"owner_id"`
	Owner      *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	ReferralID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_referral_pair" json:"referral_id"`
	Referral   *User     `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`
	Level      int       `gorm:"not null" json:"level"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ReferralEdge) TableName() string {
	return "referrals"
}
