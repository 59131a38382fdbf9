package main

import (
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tycoon-backend/internal/config"
	"tycoon-backend/internal/database"
	"tycoon-backend/internal/models"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Create tables
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Schema migrated")

	// Seed reference data (idempotent)
	db := database.GetDB()
	if err := seed(db); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	log.Println("Migration complete")
}

func seed(db *gorm.DB) error {
	currencies := []models.Currency{
		{Code: models.GDPCurrencyCode, Name: "GDP"},
		{Code: "XTR", Name: "Telegram Stars"},
	}
	for _, currency := range currencies {
		if err := db.Where(models.Currency{Code: currency.Code}).
			FirstOrCreate(&currency).Error; err != nil {
			return err
		}
	}

	levels := []models.Level{
		{Level: 1, TapPrice: 1},
		{Level: 2, TapPrice: 2},
		{Level: 3, TapPrice: 3},
		{Level: 4, TapPrice: 5},
		{Level: 5, TapPrice: 8},
	}
	for _, level := range levels {
		if err := db.Where(models.Level{Level: level.Level}).
			FirstOrCreate(&level).Error; err != nil {
			return err
		}
	}

	referralMilestones := []models.ReferralRewardMilestone{
		{RefCount: 1, Amount: 500},
		{RefCount: 5, Amount: 3000},
		{RefCount: 10, Amount: 7500},
		{RefCount: 25, Amount: 20000},
		{RefCount: 50, Amount: 50000},
		{RefCount: 100, Amount: 120000},
	}
	for _, milestone := range referralMilestones {
		if err := db.Where(models.ReferralRewardMilestone{RefCount: milestone.RefCount}).
			FirstOrCreate(&milestone).Error; err != nil {
			return err
		}
	}

	dailyMilestones := []models.DailyRewardMilestone{
		{DayNumber: 1, Amount: 100},
		{DayNumber: 2, Amount: 200},
		{DayNumber: 3, Amount: 350},
		{DayNumber: 4, Amount: 500},
		{DayNumber: 5, Amount: 750},
		{DayNumber: 6, Amount: 1000},
		{DayNumber: 7, Amount: 1500},
	}
	for _, milestone := range dailyMilestones {
		if err := db.Where(models.DailyRewardMilestone{DayNumber: milestone.DayNumber}).
			FirstOrCreate(&milestone).Error; err != nil {
			return err
		}
	}

	enterprises := []models.Enterprise{
		{Name: "Kiosk", Description: "A small street kiosk", TypeID: 1, Capacity: 10, GamePrice: 1000, StarsPrice: 10},
		{Name: "Cafe", Description: "A cozy corner cafe", TypeID: 1, Capacity: 25, GamePrice: 5000, StarsPrice: 25},
		{Name: "Supermarket", Description: "A neighborhood supermarket", TypeID: 2, Capacity: 60, GamePrice: 20000, StarsPrice: 60},
		{Name: "Factory", Description: "A production plant", TypeID: 3, Capacity: 150, GamePrice: 75000, StarsPrice: 150},
		{Name: "Tech Campus", Description: "A software company campus", TypeID: 4, Capacity: 400, GamePrice: 250000, StarsPrice: 400},
	}
	for i, enterprise := range enterprises {
		enterprise.ID = uint(i + 1)
		if err := db.Where("id = ?", enterprise.ID).
			FirstOrCreate(&enterprise).Error; err != nil {
			return err
		}
	}

	boosts := []models.Boost{
		{Name: "x1.5 for a day", Value: decimal.NewFromFloat(1.5), DurationHours: 24, StarsPrice: 20},
		{Name: "x2 for a day", Value: decimal.NewFromFloat(2.0), DurationHours: 24, StarsPrice: 35},
		{Name: "x2 for a week", Value: decimal.NewFromFloat(2.0), DurationHours: 168, StarsPrice: 150},
	}
	for i, boost := range boosts {
		boost.ID = uint(i + 1)
		if err := db.Where("id = ?", boost.ID).
			FirstOrCreate(&boost).Error; err != nil {
			return err
		}
	}

	cases := []models.Case{
		{Name: "Bronze case", MinAmount: 100, MaxAmount: 1000, StarsPrice: 15},
		{Name: "Silver case", MinAmount: 500, MaxAmount: 5000, StarsPrice: 50},
		{Name: "Gold case", MinAmount: 2000, MaxAmount: 25000, StarsPrice: 150},
	}
	for i, box := range cases {
		box.ID = uint(i + 1)
		if err := db.Where("id = ?", box.ID).
			FirstOrCreate(&box).Error; err != nil {
			return err
		}
	}

	countries := []models.Country{
		{Name: "Arstotzka", Description: "Glory to industry"},
		{Name: "San Seriffe", Description: "An island of opportunity"},
	}
	for i, country := range countries {
		country.ID = uint(i + 1)
		if err := db.Where("id = ?", country.ID).
			FirstOrCreate(&country).Error; err != nil {
			return err
		}
	}

	regions := []models.Region{
		{Name: "East Grestin", CountryID: 1},
		{Name: "West Grestin", CountryID: 1},
		{Name: "Upper Caisse", CountryID: 2},
		{Name: "Lower Caisse", CountryID: 2},
	}
	for i, region := range regions {
		region.ID = uint(i + 1)
		if err := db.Where("id = ?", region.ID).
			FirstOrCreate(&region).Error; err != nil {
			return err
		}
	}

	log.Println("Reference data seeded")
	return nil
}
