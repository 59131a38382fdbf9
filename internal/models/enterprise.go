package models

import (
	"time"
)

// Enterprise is a purchasable business type from the game catalog
type Enterprise struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	ImageURL    string `gorm:"size:500" json:"image_url"`
	TypeID      int    `gorm:"index" json:"type_id"`
	Capacity    int    `gorm:"not null" json:"capacity"`
	GamePrice   int64  `gorm:"not null" json:"game_price"`
	StarsPrice  int    `gorm:"not null" json:"stars_price"`
}

func (Enterprise) TableName() string {
	return "enterprises"
}

// UserEnterprise is one enterprise owned by a user
type UserEnterprise struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TgID         int64       `gorm:"not null;index" json:"tg_id"`
	EnterpriseID uint        `gorm:"not null;index" json:"enterprise_id"`
	Enterprise   *Enterprise `gorm:"foreignKey:EnterpriseID" json:"enterprise,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (UserEnterprise) TableName() string {
	return "user_enterprises"
}
