package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"tycoon-backend/internal/config"
	"tycoon-backend/internal/models"
)

func testGameConfig() config.GameConfig {
	return config.GameConfig{
		EnergyLimit:         1000,
		EnterpriseMinSlots:  3,
		EnterpriseMaxSlots:  12,
		StartingEnterprises: 1,
	}
}

func newTestUserService(db *gorm.DB) *UserService {
	rewards := NewRewardService(db)
	return NewUserService(db, testGameConfig(), NewReferralService(db, rewards), rewards)
}

func TestRegisterNewUser(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)

	starter := models.Enterprise{ID: 1, Name: "Kiosk", Capacity: 10, GamePrice: 1000, StarsPrice: 10}
	if err := db.Create(&starter).Error; err != nil {
		t.Fatalf("failed to seed enterprise: %v", err)
	}

	user, err := service.Register(RegisterInput{
		TgID:      500,
		ChatID:    500,
		Username:  "alice",
		FirstName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.Level != 1 {
		t.Errorf("expected level 1, got %d", user.Level)
	}
	if user.Energy != 1000 {
		t.Errorf("expected full energy, got %d", user.Energy)
	}
	if user.EnterpriseSlots != 3 {
		t.Errorf("expected min slots, got %d", user.EnterpriseSlots)
	}
	if user.TotalCapacity != 10 {
		t.Errorf("expected starting capacity 10, got %d", user.TotalCapacity)
	}

	var owned int64
	db.Model(&models.UserEnterprise{}).Where("tg_id = ?", user.TgID).Count(&owned)
	if owned != 1 {
		t.Errorf("expected 1 starting enterprise, got %d", owned)
	}

	// Re-registering the same tg_id must not create a second row.
	again, err := service.Register(RegisterInput{TgID: 500, ChatID: 500, Username: "alice2"})
	if err != nil {
		t.Fatalf("repeat Register failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("repeat registration created a new user")
	}

	var total int64
	db.Model(&models.User{}).Count(&total)
	if total != 1 {
		t.Errorf("expected 1 user row, got %d", total)
	}
}

func TestRegisterWithSponsor(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)

	sponsor := createTestUser(t, db, 100, nil)

	ref := sponsor.TgID
	user, err := service.Register(RegisterInput{TgID: 500, ChatID: 500, RefTgID: &ref})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ReferrerID == nil || *user.ReferrerID != sponsor.ID {
		t.Fatalf("referrer pointer not set")
	}

	var edge models.ReferralEdge
	if err := db.Where("owner_id = ? AND referral_id = ?", sponsor.ID, user.ID).First(&edge).Error; err != nil {
		t.Fatalf("referral edge missing: %v", err)
	}
	if edge.Level != 1 {
		t.Errorf("expected direct edge at level 1, got %d", edge.Level)
	}

	// Self-invite leaves no referrer.
	self := int64(501)
	loner, err := service.Register(RegisterInput{TgID: 501, ChatID: 501, RefTgID: &self})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if loner.ReferrerID != nil {
		t.Errorf("self-invite must not set a referrer")
	}
}

func TestRecordLoginStreak(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)
	now := time.Now().UTC()

	user := createTestUser(t, db, 100, nil)

	// First login starts the streak.
	if err := service.RecordLogin(user.TgID, now.Unix()); err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.DailyRewardCounter != 1 {
		t.Fatalf("expected streak 1 on first login, got %d", stored.DailyRewardCounter)
	}

	// Yesterday's login, today extends the streak.
	yesterday := now.AddDate(0, 0, -1).Unix()
	db.Model(&stored).Updates(map[string]interface{}{"auth_date": yesterday, "daily_reward_counter": 4})

	if err := service.RecordLogin(user.TgID, now.Unix()); err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.DailyRewardCounter != 5 {
		t.Errorf("expected streak 5 after consecutive login, got %d", stored.DailyRewardCounter)
	}

	// Same day again: no change.
	if err := service.RecordLogin(user.TgID, now.Unix()); err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.DailyRewardCounter != 5 {
		t.Errorf("same-day login changed the streak: %d", stored.DailyRewardCounter)
	}
}

func TestRecordLoginGapResetsStreakAndPurgesClaims(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)
	now := time.Now().UTC()

	milestone := models.DailyRewardMilestone{DayNumber: 2, Amount: 200}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	user := createTestUser(t, db, 100, nil)
	threeDaysAgo := now.AddDate(0, 0, -3).Unix()
	db.Model(&models.User{}).Where("tg_id = ?", user.TgID).
		Updates(map[string]interface{}{"auth_date": threeDaysAgo, "daily_reward_counter": 6})

	claim := models.UserDailyRewardClaim{TgID: user.TgID, MilestoneID: milestone.ID}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("failed to create claim: %v", err)
	}

	if err := service.RecordLogin(user.TgID, now.Unix()); err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.DailyRewardCounter != 1 {
		t.Errorf("expected streak reset to 1, got %d", stored.DailyRewardCounter)
	}

	var claims int64
	db.Model(&models.UserDailyRewardClaim{}).Where("tg_id = ?", user.TgID).Count(&claims)
	if claims != 0 {
		t.Errorf("expected claim rows purged on reset, got %d", claims)
	}
}

func TestTapUpdateBalance(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)

	if err := db.Create(&models.Level{Level: 1, TapPrice: 2}).Error; err != nil {
		t.Fatalf("failed to seed level: %v", err)
	}
	user := createTestUser(t, db, 100, nil)

	result, err := service.TapUpdateBalance(user.TgID, 50)
	if err != nil {
		t.Fatalf("TapUpdateBalance failed: %v", err)
	}
	if result.Balance != 100 {
		t.Errorf("expected balance 100 after 50 taps at price 2, got %d", result.Balance)
	}
	if result.Energy != 950 {
		t.Errorf("expected energy 950, got %d", result.Energy)
	}

	// Reporting the same cumulative count again credits nothing.
	result, err = service.TapUpdateBalance(user.TgID, 50)
	if err != nil {
		t.Fatalf("TapUpdateBalance failed: %v", err)
	}
	if result.Balance != 100 {
		t.Errorf("repeat report changed the balance: %d", result.Balance)
	}
}

func TestBuySlotCap(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)

	user := createTestUser(t, db, 100, nil)
	db.Model(&models.User{}).Where("tg_id = ?", user.TgID).Update("enterprise_slots", 11)

	slots, err := service.BuySlot(user.TgID)
	if err != nil {
		t.Fatalf("BuySlot failed: %v", err)
	}
	if slots != 12 {
		t.Errorf("expected 12 slots, got %d", slots)
	}

	if _, err := service.BuySlot(user.TgID); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest at the slot cap, got %v", err)
	}
}

func TestUpdateProfileCountrySwitchHalvesBalance(t *testing.T) {
	db := setupTestDB(t)
	service := newTestUserService(db)

	countries := []models.Country{{Name: "Arstotzka"}, {Name: "San Seriffe"}}
	for i := range countries {
		if err := db.Create(&countries[i]).Error; err != nil {
			t.Fatalf("failed to seed country: %v", err)
		}
	}

	user := createTestUser(t, db, 100, nil)
	db.Model(&models.User{}).Where("tg_id = ?", user.TgID).Update("game_balance", 1000)

	// First pick halves too: the user had no country before.
	updated, err := service.UpdateProfile(user.TgID, ProfileUpdate{CountryID: &countries[0].ID})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.GameBalance != 500 {
		t.Errorf("expected balance halved to 500, got %d", updated.GameBalance)
	}

	// Switching to another country halves again.
	updated, err = service.UpdateProfile(user.TgID, ProfileUpdate{CountryID: &countries[1].ID})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.GameBalance != 250 {
		t.Errorf("expected balance halved to 250, got %d", updated.GameBalance)
	}

	// Region of a foreign country is rejected.
	region := models.Region{Name: "East Grestin", CountryID: countries[0].ID}
	if err := db.Create(&region).Error; err != nil {
		t.Fatalf("failed to seed region: %v", err)
	}
	if _, err := service.UpdateProfile(user.TgID, ProfileUpdate{RegionID: &region.ID}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for region outside the country, got %v", err)
	}
}
