package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a player, keyed internally by uuid and externally by
// their telegram id.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TgID      int64     `gorm:"uniqueIndex;not null" json:"tg_id"`
	TgChatID  int64     `json:"tg_chat_id"`
	TgURL     *string   `gorm:"size:255" json:"tg_url,omitempty"`
	Username  *string   `gorm:"size:100" json:"username,omitempty"`
	FirstName *string   `gorm:"size:100" json:"first_name,omitempty"`
	LastName  *string   `gorm:"size:100" json:"last_name,omitempty"`
	IsBot     bool      `gorm:"default:false" json:"is_bot"`
	IsPremium bool      `gorm:"default:false" json:"is_premium"`

	Level           int             `gorm:"default:1" json:"level"`
	Energy          int             `gorm:"default:0" json:"energy"`
	TotalCapacity   int             `gorm:"default:0" json:"total_capacity"`
	TotalBoostValue decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_boost_value"`
	EnterpriseSlots int             `gorm:"default:0" json:"enterprise_slots"`
	GameBalance     int64           `gorm:"default:0" json:"game_balance"`
	CanOpenCase     bool            `gorm:"default:false" json:"can_open_case"`

	CountryID *uint    `gorm:"index" json:"country_id,omitempty"`
	Country   *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`
	RegionID  *uint    `gorm:"index" json:"region_id,omitempty"`
	Region    *Region  `gorm:"foreignKey:RegionID" json:"region,omitempty"`

	GdpRatingPosition      int `gorm:"default:0" json:"gdp_rating_position"`
	CapacityRatingPosition int `gorm:"default:0" json:"capacity_rating_position"`

	ReferrerID       *uuid.UUID `gorm:"type:uuid;index" json:"referrer_id,omitempty"`
	Referrer         *User      `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	ReferralsCounter int        `gorm:"default:0" json:"referrals_counter"`

	DailyRewardCounter int    `gorm:"default:0" json:"daily_reward_counter"`
	AuthDate           *int64 `json:"auth_date,omitempty"`

	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`
	IsVerified  bool `gorm:"default:false" json:"is_verified"`
	IsActive    bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a uuid if one was not set by the caller
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Level is one row of the level table; tap_price is the balance credited
// per tap at that level.
type Level struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	Level    int   `gorm:"uniqueIndex;not null" json:"level"`
	TapPrice int64 `gorm:"not null" json:"tap_price"`
}

func (Level) TableName() string {
	return "levels"
}
