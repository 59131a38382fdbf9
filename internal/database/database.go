package database

import (
	"fmt"
	"log"

	"tycoon-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return AutoMigrateDB(DB)
}

// AutoMigrateDB runs automatic migrations on the given database handle
func AutoMigrateDB(db *gorm.DB) error {
	// Migrate core models first
	coreModels := []interface{}{
		&models.User{},
		&models.RefreshSession{},
		&models.Currency{},
		&models.Level{},
		&models.Country{},
		&models.Region{},
	}

	for _, model := range coreModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate referral/reward models
	rewardModels := []interface{}{
		&models.ReferralEdge{},
		&models.ReferralRewardMilestone{},
		&models.UserReferralRewardClaim{},
		&models.DailyRewardMilestone{},
		&models.UserDailyRewardClaim{},
	}

	for _, model := range rewardModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate enterprise/market models
	marketModels := []interface{}{
		&models.Enterprise{},
		&models.UserEnterprise{},
		&models.MarketListing{},
		&models.MarketPrice{},
		&models.MarketHistory{},
	}

	for _, model := range marketModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Migrate product/payment models
	paymentModels := []interface{}{
		&models.Boost{},
		&models.UserBoost{},
		&models.Case{},
		&models.StarsPayment{},
		&models.StarsRefund{},
	}

	for _, model := range paymentModels {
		if err := db.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
