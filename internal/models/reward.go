package models

import (
	"time"
)

// ReferralRewardMilestone maps a cumulative referral count to a payout amount
type ReferralRewardMilestone struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	RefCount int   `gorm:"uniqueIndex;not null" json:"ref_count"`
	Amount   int64 `gorm:"not null" json:"amount"`
}

func (ReferralRewardMilestone) TableName() string {
	return "referral_reward_milestones"
}

// UserReferralRewardClaim records milestone eligibility for a user and
// whether the reward has been collected.
type UserReferralRewardClaim struct {
	ID          uint                     `gorm:"primaryKey" json:"id"`
	TgID        int64                    `gorm:"not null;index;uniqueIndex:idx_ref_claim" json:"tg_id"`
	MilestoneID uint                     `gorm:"not null;uniqueIndex:idx_ref_claim" json:"milestone_id"`
	Milestone   *ReferralRewardMilestone `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	IsClaimed   bool                     `gorm:"default:false" json:"is_claimed"`
	CreatedAt   time.Time                `json:"created_at"`
}

func (UserReferralRewardClaim) TableName() string {
	return "user_referral_reward_claims"
}

// DailyRewardMilestone maps a consecutive login-day count to a payout amount
type DailyRewardMilestone struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	DayNumber int   `gorm:"uniqueIndex;not null" json:"day_number"`
	Amount    int64 `gorm:"not null" json:"amount"`
}

func (DailyRewardMilestone) TableName() string {
	return "daily_reward_milestones"
}

// UserDailyRewardClaim is the daily-streak counterpart of the referral
// claim row. Rows are purged when the streak resets.
type UserDailyRewardClaim struct {
	ID          uint                  `gorm:"primaryKey" json:"id"`
	TgID        int64                 `gorm:"not null;index;uniqueIndex:idx_daily_claim" json:"tg_id"`
	MilestoneID uint                  `gorm:"not null;uniqueIndex:idx_daily_claim" json:"milestone_id"`
	Milestone   *DailyRewardMilestone `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	IsClaimed   bool                  `gorm:"default:false" json:"is_claimed"`
	CreatedAt   time.Time             `json:"created_at"`
}

func (UserDailyRewardClaim) TableName() string {
	return "user_daily_reward_claims"
}
