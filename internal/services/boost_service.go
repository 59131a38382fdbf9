package services

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// BoostService handles timed income multipliers
type BoostService struct {
	db *gorm.DB
}

// NewBoostService creates a new BoostService
func NewBoostService(db *gorm.DB) *BoostService {
	return &BoostService{db: db}
}

// Catalog returns the purchasable boosts
func (s *BoostService) Catalog() ([]models.Boost, error) {
	var boosts []models.Boost
	if err := s.db.Order("id").Find(&boosts).Error; err != nil {
		return nil, err
	}
	return boosts, nil
}

// GrantForStars attaches a boost for its duration and adds its value to
// the user's total boost multiplier.
func (s *BoostService) GrantForStars(tgID int64, boostID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var boost models.Boost
		if err := tx.Where("id = ?", boostID).First(&boost).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: boost %d", ErrNotFound, boostID)
			}
			return err
		}

		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		active := models.UserBoost{
			TgID:      tgID,
			BoostID:   boostID,
			ExpiresAt: time.Now().UTC().Add(time.Duration(boost.DurationHours) * time.Hour),
		}
		if err := tx.Create(&active).Error; err != nil {
			return err
		}

		newTotal := user.TotalBoostValue.Add(boost.Value)
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("total_boost_value", newTotal).Error; err != nil {
			return err
		}

		log.Printf("Boost %d granted to %d until %s", boostID, tgID, active.ExpiresAt.Format(time.RFC3339))
		return nil
	})
}

// PruneExpired removes expired boost rows and subtracts their values from
// the owners' total boost multiplier. Returns the number of rows pruned.
func (s *BoostService) PruneExpired() (int, error) {
	pruned := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var expired []models.UserBoost
		if err := tx.Where("expires_at <= ?", time.Now().UTC()).
			Preload("Boost").Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		perUser := make(map[int64]decimal.Decimal)
		ids := make([]uint, 0, len(expired))
		for _, row := range expired {
			ids = append(ids, row.ID)
			if row.Boost != nil {
				perUser[row.TgID] = perUser[row.TgID].Add(row.Boost.Value)
			}
		}

		for tgID, total := range perUser {
			var user models.User
			if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}

			newTotal := user.TotalBoostValue.Sub(total)
			if newTotal.IsNegative() {
				newTotal = decimal.Zero
			}
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("total_boost_value", newTotal).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.UserBoost{}, ids).Error; err != nil {
			return err
		}
		pruned = len(ids)
		return nil
	})

	if err != nil {
		return 0, err
	}
	return pruned, nil
}
