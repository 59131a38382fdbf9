package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// maxReferralDepth bounds the upward sponsor-chain walk
const maxReferralDepth = 10

// ReferralService builds the multi-level referral graph
type ReferralService struct {
	db      *gorm.DB
	rewards *RewardService
}

// NewReferralService creates a new ReferralService
func NewReferralService(db *gorm.DB, rewards *RewardService) *ReferralService {
	return &ReferralService{
		db:      db,
		rewards: rewards,
	}
}

// BuildChain wires a freshly created user into the referral graph. It
// increments the direct sponsor's referral counter, grants the referral
// milestone the counter landed on (if any), and walks the sponsor chain
// upward inserting one edge per ancestor until the chain ends or level
// 10 is reached.
//
// Runs inside the caller's transaction; the new user's referrer pointer
// is expected to be set already.
func (s *ReferralService) BuildChain(tx *gorm.DB, sponsor *models.User, newUser *models.User) error {
	sponsor.ReferralsCounter++
	if err := tx.Model(&models.User{}).Where("id = ?", sponsor.ID).
		Update("referrals_counter", sponsor.ReferralsCounter).Error; err != nil {
		return fmt.Errorf("failed to increment referral counter: %w", err)
	}

	if err := s.rewards.GrantReferralMilestone(tx, sponsor.TgID, sponsor.ReferralsCounter); err != nil {
		return err
	}

	owner := sponsor
	for level := 1; level <= maxReferralDepth; level++ {
		edge := models.ReferralEdge{
			OwnerID:    owner.ID,
			ReferralID: newUser.ID,
			Level:      level,
		}
		if err := tx.Create(&edge).Error; err != nil {
			return fmt.Errorf("failed to create referral edge at level %d: %w", level, err)
		}

		if owner.ReferrerID == nil {
			break
		}

		var next models.User
		if err := tx.Where("id = ?", *owner.ReferrerID).First(&next).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				log.Printf("Referral chain broken: user %s points at missing referrer %s", owner.ID, *owner.ReferrerID)
				break
			}
			return err
		}
		owner = &next
	}

	return nil
}

// ReferralStats aggregates a user's referral graph by chain depth
type ReferralStats struct {
	TotalReferrals int64         `json:"total_referrals"`
	LevelStats     map[int]int64 `json:"level_stats"`
}

// Stats returns per-level referral counts for a user
func (s *ReferralService) Stats(tgID int64) (*ReferralStats, error) {
	var user models.User
	if err := s.db.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}

	type levelCount struct {
		Level int
		Count int64
	}

	var rows []levelCount
	if err := s.db.Model(&models.ReferralEdge{}).
		Select("level, count(id) as count").
		Where("owner_id = ?", user.ID).
		Group("level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &ReferralStats{LevelStats: make(map[int]int64, len(rows))}
	for _, row := range rows {
		stats.LevelStats[row.Level] = row.Count
		stats.TotalReferrals += row.Count
	}
	return stats, nil
}

// Referrals returns the direct and indirect referrals of a user with
// offset/limit pagination.
func (s *ReferralService) Referrals(tgID int64, offset, limit int) ([]models.ReferralEdge, error) {
	var user models.User
	if err := s.db.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}

	var edges []models.ReferralEdge
	if err := s.db.Where("owner_id = ?", user.ID).
		Preload("Referral").
		Order("level, created_at").
		Offset(offset).Limit(limit).
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}
