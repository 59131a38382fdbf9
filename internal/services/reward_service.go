package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// RewardService grants and settles milestone rewards. Referral milestones
// key on cumulative referral count, daily milestones on consecutive
// login-day count; both follow the same grant/claim shape.
type RewardService struct {
	db *gorm.DB
}

// NewRewardService creates a new RewardService
func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{db: db}
}

// GrantReferralMilestone inserts an unclaimed claim row for the milestone
// whose threshold equals counterValue exactly. A counter that jumps past
// a milestone value never grants it retroactively; that matching policy
// is intentional. No-op when no milestone matches or a claim already
// exists.
func (s *RewardService) GrantReferralMilestone(tx *gorm.DB, tgID int64, counterValue int) error {
	var milestone models.ReferralRewardMilestone
	err := tx.Where("ref_count = ?", counterValue).First(&milestone).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	var existing models.UserReferralRewardClaim
	err = tx.Where("tg_id = ? AND milestone_id = ?", tgID, milestone.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	claim := models.UserReferralRewardClaim{
		TgID:        tgID,
		MilestoneID: milestone.ID,
		IsClaimed:   false,
	}
	if err := tx.Create(&claim).Error; err != nil {
		return fmt.Errorf("failed to create referral reward claim: %w", err)
	}

	log.Printf("Referral milestone %d reached by user %d", counterValue, tgID)
	return nil
}

// GrantDailyMilestone is the daily-streak counterpart of
// GrantReferralMilestone.
func (s *RewardService) GrantDailyMilestone(tx *gorm.DB, tgID int64, dayNumber int) error {
	var milestone models.DailyRewardMilestone
	err := tx.Where("day_number = ?", dayNumber).First(&milestone).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	var existing models.UserDailyRewardClaim
	err = tx.Where("tg_id = ? AND milestone_id = ?", tgID, milestone.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	claim := models.UserDailyRewardClaim{
		TgID:        tgID,
		MilestoneID: milestone.ID,
		IsClaimed:   false,
	}
	if err := tx.Create(&claim).Error; err != nil {
		return fmt.Errorf("failed to create daily reward claim: %w", err)
	}
	return nil
}

// ReferralRewardItem is one milestone annotated with the caller's progress
type ReferralRewardItem struct {
	ID          uint  `json:"id"`
	RefCount    int   `json:"ref_count"`
	Amount      int64 `json:"amount"`
	IsCompleted bool  `json:"is_completed"`
	IsClaimed   bool  `json:"is_claimed"`
}

// ListReferralRewards returns all referral milestones annotated with the
// user's claim state.
func (s *RewardService) ListReferralRewards(tgID int64, offset, limit int) ([]ReferralRewardItem, error) {
	var user models.User
	if err := s.db.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}

	var milestones []models.ReferralRewardMilestone
	if err := s.db.Order("ref_count").Offset(offset).Limit(limit).Find(&milestones).Error; err != nil {
		return nil, err
	}

	var claims []models.UserReferralRewardClaim
	if err := s.db.Where("tg_id = ?", tgID).Find(&claims).Error; err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(claims))
	claimed := make(map[uint]bool, len(claims))
	for _, claim := range claims {
		completed[claim.MilestoneID] = true
		if claim.IsClaimed {
			claimed[claim.MilestoneID] = true
		}
	}

	out := make([]ReferralRewardItem, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, ReferralRewardItem{
			ID:          m.ID,
			RefCount:    m.RefCount,
			Amount:      m.Amount,
			IsCompleted: completed[m.ID],
			IsClaimed:   claimed[m.ID],
		})
	}
	return out, nil
}

// DailyRewardItem is one daily milestone annotated with the caller's progress
type DailyRewardItem struct {
	ID          uint  `json:"id"`
	DayNumber   int   `json:"day_number"`
	Amount      int64 `json:"amount"`
	IsCompleted bool  `json:"is_completed"`
	IsClaimed   bool  `json:"is_claimed"`
}

// ListDailyRewards returns all daily milestones annotated with the user's
// claim state.
func (s *RewardService) ListDailyRewards(tgID int64, offset, limit int) ([]DailyRewardItem, error) {
	var user models.User
	if err := s.db.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}

	var milestones []models.DailyRewardMilestone
	if err := s.db.Order("day_number").Offset(offset).Limit(limit).Find(&milestones).Error; err != nil {
		return nil, err
	}

	var claims []models.UserDailyRewardClaim
	if err := s.db.Where("tg_id = ?", tgID).Find(&claims).Error; err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(claims))
	claimed := make(map[uint]bool, len(claims))
	for _, claim := range claims {
		completed[claim.MilestoneID] = true
		if claim.IsClaimed {
			claimed[claim.MilestoneID] = true
		}
	}

	out := make([]DailyRewardItem, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, DailyRewardItem{
			ID:          m.ID,
			DayNumber:   m.DayNumber,
			Amount:      m.Amount,
			IsCompleted: completed[m.ID],
			IsClaimed:   claimed[m.ID],
		})
	}
	return out, nil
}

// ClaimReferralReward settles an unclaimed referral milestone: the claim
// flag flip and the balance credit commit in one transaction.
func (s *RewardService) ClaimReferralReward(tgID int64, refCount int) (*models.UserReferralRewardClaim, error) {
	var claim models.UserReferralRewardClaim

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		if user.ReferralsCounter < 1 {
			return fmt.Errorf("%w: the user has no referrals", ErrBadRequest)
		}

		var milestone models.ReferralRewardMilestone
		if err := tx.Where("ref_count = ?", refCount).First(&milestone).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: referral reward", ErrNotFound)
			}
			return err
		}

		if err := tx.Where("tg_id = ? AND milestone_id = ?", tgID, milestone.ID).First(&claim).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTaskNotCompleted
			}
			return err
		}

		if claim.IsClaimed {
			return fmt.Errorf("%w: reward already claimed", ErrConflict)
		}

		if err := tx.Model(&claim).Update("is_claimed", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("tg_id = ?", tgID).
			Update("game_balance", gorm.Expr("game_balance + ?", milestone.Amount)).Error
	})

	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// ClaimDailyReward settles an unclaimed daily milestone, same contract as
// ClaimReferralReward.
func (s *RewardService) ClaimDailyReward(tgID int64, dayNumber int) (*models.UserDailyRewardClaim, error) {
	var claim models.UserDailyRewardClaim

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		var milestone models.DailyRewardMilestone
		if err := tx.Where("day_number = ?", dayNumber).First(&milestone).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: daily reward", ErrNotFound)
			}
			return err
		}

		if err := tx.Where("tg_id = ? AND milestone_id = ?", tgID, milestone.ID).First(&claim).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTaskNotCompleted
			}
			return err
		}

		if claim.IsClaimed {
			return fmt.Errorf("%w: reward already claimed", ErrConflict)
		}

		if err := tx.Model(&claim).Update("is_claimed", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("tg_id = ?", tgID).
			Update("game_balance", gorm.Expr("game_balance + ?", milestone.Amount)).Error
	})

	if err != nil {
		return nil, err
	}
	return &claim, nil
}
