package services

import (
	"fmt"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// creditBalance adds amount to a user's game balance inside tx. The
// adjustment happens in the store so concurrent credits never lose updates.
func creditBalance(tx *gorm.DB, tgID int64, amount int64) error {
	result := tx.Model(&models.User{}).Where("tg_id = ?", tgID).
		Update("game_balance", gorm.Expr("game_balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// debitBalance subtracts amount from a user's game balance inside tx.
// The balance check is part of the UPDATE's WHERE clause, so a concurrent
// debit that would drive the balance negative simply matches no row.
func debitBalance(tx *gorm.DB, tgID int64, amount int64) error {
	result := tx.Model(&models.User{}).
		Where("tg_id = ? AND game_balance >= ?", tgID, amount).
		Update("game_balance", gorm.Expr("game_balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: insufficient balance", ErrForbidden)
	}
	return nil
}
