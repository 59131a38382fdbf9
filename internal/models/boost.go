package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Boost is a purchasable timed income multiplier
type Boost struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Description   string          `gorm:"size:500" json:"description"`
	Value         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	DurationHours int             `gorm:"not null" json:"duration_hours"`
	StarsPrice    int             `gorm:"not null" json:"stars_price"`
}

func (Boost) TableName() string {
	return "boosts"
}

// UserBoost is an active boost attached to a user, pruned after expiry
type UserBoost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TgID      int64     `gorm:"not null;index" json:"tg_id"`
	BoostID   uint      `gorm:"not null" json:"boost_id"`
	Boost     *Boost    `gorm:"foreignKey:BoostID" json:"boost,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

func (UserBoost) TableName() string {
	return "user_boosts"
}

// Case is a purchasable reward draw
type Case struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:100;not null" json:"name"`
	MinAmount  int64  `gorm:"not null" json:"min_amount"`
	MaxAmount  int64  `gorm:"not null" json:"max_amount"`
	StarsPrice int    `gorm:"not null" json:"stars_price"`
}

func (Case) TableName() string {
	return "cases"
}
