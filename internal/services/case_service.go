package services

import (
	"fmt"
	"log"
	"math/rand"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// CaseService handles purchasable reward draws
type CaseService struct {
	db *gorm.DB
}

// NewCaseService creates a new CaseService
func NewCaseService(db *gorm.DB) *CaseService {
	return &CaseService{db: db}
}

// Catalog returns the purchasable cases
func (s *CaseService) Catalog() ([]models.Case, error) {
	var cases []models.Case
	if err := s.db.Order("id").Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// GrantForStars marks the user as holding an unopened case
func (s *CaseService) GrantForStars(tgID int64, caseID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var box models.Case
		if err := tx.Where("id = ?", caseID).First(&box).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: case %d", ErrNotFound, caseID)
			}
			return err
		}

		result := tx.Model(&models.User{}).Where("tg_id = ?", tgID).
			Update("can_open_case", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: user", ErrNotFound)
		}

		log.Printf("Case %d granted to %d", caseID, tgID)
		return nil
	})
}

// Open draws a reward from a held case and credits it to the balance
func (s *CaseService) Open(tgID int64, caseID uint) (int64, error) {
	var amount int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}
		if !user.CanOpenCase {
			return fmt.Errorf("%w: no unopened case", ErrTaskNotCompleted)
		}

		var box models.Case
		if err := tx.Where("id = ?", caseID).First(&box).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: case %d", ErrNotFound, caseID)
			}
			return err
		}

		amount = box.MinAmount
		if spread := box.MaxAmount - box.MinAmount; spread > 0 {
			amount += rand.Int63n(spread + 1)
		}

		if err := creditBalance(tx, tgID, amount); err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("can_open_case", false).Error
	})

	if err != nil {
		return 0, err
	}
	return amount, nil
}
