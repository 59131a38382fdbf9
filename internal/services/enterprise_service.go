package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// EnterpriseService handles the enterprise catalog and purchases
type EnterpriseService struct {
	db *gorm.DB
}

// NewEnterpriseService creates a new EnterpriseService
func NewEnterpriseService(db *gorm.DB) *EnterpriseService {
	return &EnterpriseService{db: db}
}

// Catalog returns the purchasable enterprise types
func (s *EnterpriseService) Catalog() ([]models.Enterprise, error) {
	var enterprises []models.Enterprise
	if err := s.db.Order("id").Find(&enterprises).Error; err != nil {
		return nil, err
	}
	return enterprises, nil
}

// Owned returns the enterprises a user currently holds
func (s *EnterpriseService) Owned(tgID int64) ([]models.UserEnterprise, error) {
	var owned []models.UserEnterprise
	if err := s.db.Where("tg_id = ?", tgID).
		Preload("Enterprise").
		Find(&owned).Error; err != nil {
		return nil, err
	}
	return owned, nil
}

// grant inserts an ownership row and rolls the capacity into the user.
// Slot availability is checked against the current owned count.
func (s *EnterpriseService) grant(tx *gorm.DB, tgID int64, enterpriseID uint) error {
	var enterprise models.Enterprise
	if err := tx.Where("id = ?", enterpriseID).First(&enterprise).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: enterprise %d", ErrNotFound, enterpriseID)
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

	var ownedCount int64
	if err := tx.Model(&models.UserEnterprise{}).Where("tg_id = ?", tgID).
		Count(&ownedCount).Error; err != nil {
		return err
	}
	if ownedCount >= int64(user.EnterpriseSlots) {
		return fmt.Errorf("%w: no free enterprise slot", ErrBadRequest)
	}

	owned := models.UserEnterprise{
		TgID:         tgID,
		EnterpriseID: enterpriseID,
	}
	if err := tx.Create(&owned).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_capacity", gorm.Expr("total_capacity + ?", enterprise.Capacity)).Error
}

// GrantForStars grants an enterprise paid for with platform stars.
// The payment is already settled, so no game balance moves here.
func (s *EnterpriseService) GrantForStars(tgID int64, enterpriseID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.grant(tx, tgID, enterpriseID); err != nil {
			return err
		}
		log.Printf("Enterprise %d granted to %d (stars purchase)", enterpriseID, tgID)
		return nil
	})
}

// BuyForGame purchases an enterprise with game balance
func (s *EnterpriseService) BuyForGame(tgID int64, enterpriseID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var enterprise models.Enterprise
		if err := tx.Where("id = ?", enterpriseID).First(&enterprise).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: enterprise %d", ErrNotFound, enterpriseID)
			}
			return err
		}
		if enterprise.GamePrice <= 0 {
			return fmt.Errorf("%w: enterprise %d is not sold for game balance", ErrBadRequest, enterpriseID)
		}

		if err := debitBalance(tx, tgID, enterprise.GamePrice); err != nil {
			return err
		}
		return s.grant(tx, tgID, enterpriseID)
	})
}
