package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tycoon-backend/internal/database"
	"tycoon-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := database.AutoMigrateDB(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared in-memory DB survives across tests, clean everything.
	tables := []string{
		"referrals", "referral_reward_milestones", "user_referral_reward_claims",
		"daily_reward_milestones", "user_daily_reward_claims",
		"market_prices", "market_listings", "market_history",
		"user_enterprises", "enterprises", "currencies",
		"user_boosts", "boosts", "cases",
		"stars_payments", "stars_refunds",
		"refresh_sessions", "levels", "regions", "countries", "users",
	}
	for _, table := range tables {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, tgID int64, referrer *models.User) *models.User {
	user := &models.User{
		TgID:     tgID,
		TgChatID: tgID,
		Level:    1,
		Energy:   1000,
		IsActive: true,
	}
	if referrer != nil {
		user.ReferrerID = &referrer.ID
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %d: %v", tgID, err)
	}
	return user
}

// buildSponsorChain creates users A1 <- A2 <- ... <- An where A1's
// referrer is A2 and so on, returning them in that order.
func buildSponsorChain(t *testing.T, db *gorm.DB, n int) []*models.User {
	chain := make([]*models.User, n)
	var prev *models.User
	for i := n - 1; i >= 0; i-- {
		chain[i] = createTestUser(t, db, int64(1000+i), prev)
		prev = chain[i]
	}
	return chain
}

func TestBuildChainEdges(t *testing.T) {
	for _, n := range []int{1, 3, 10, 12} {
		t.Run(fmt.Sprintf("chain_of_%d", n), func(t *testing.T) {
			db := setupTestDB(t)
			service := NewReferralService(db, NewRewardService(db))

			chain := buildSponsorChain(t, db, n)
			newUser := createTestUser(t, db, 1, chain[0])

			if err := service.BuildChain(db, chain[0], newUser); err != nil {
				t.Fatalf("BuildChain failed: %v", err)
			}

			want := n
			if want > 10 {
				want = 10
			}

			var edges []models.ReferralEdge
			if err := db.Where("referral_id = ?", newUser.ID).Order("level").Find(&edges).Error; err != nil {
				t.Fatalf("failed to load edges: %v", err)
			}
			if len(edges) != want {
				t.Fatalf("expected %d edges, got %d", want, len(edges))
			}

			for i, edge := range edges {
				if edge.Level != i+1 {
					t.Errorf("edge %d: expected level %d, got %d", i, i+1, edge.Level)
				}
				if edge.OwnerID != chain[i].ID {
					t.Errorf("edge at level %d points at the wrong owner", edge.Level)
				}
			}
		})
	}
}

func TestBuildChainIncrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, NewRewardService(db))

	sponsor := createTestUser(t, db, 100, nil)

	for i := 0; i < 3; i++ {
		newUser := createTestUser(t, db, int64(200+i), sponsor)
		if err := service.BuildChain(db, sponsor, newUser); err != nil {
			t.Fatalf("BuildChain failed: %v", err)
		}
	}

	var stored models.User
	if err := db.Where("tg_id = ?", int64(100)).First(&stored).Error; err != nil {
		t.Fatalf("failed to reload sponsor: %v", err)
	}
	if stored.ReferralsCounter != 3 {
		t.Errorf("expected referrals_counter 3, got %d", stored.ReferralsCounter)
	}
}

func TestBuildChainGrantsMilestoneOnExactMatch(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, NewRewardService(db))

	milestone := models.ReferralRewardMilestone{RefCount: 2, Amount: 500}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	sponsor := createTestUser(t, db, 100, nil)

	first := createTestUser(t, db, 201, sponsor)
	if err := service.BuildChain(db, sponsor, first); err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	var count int64
	db.Model(&models.UserReferralRewardClaim{}).Where("tg_id = ?", sponsor.TgID).Count(&count)
	if count != 0 {
		t.Fatalf("claim created below the threshold")
	}

	second := createTestUser(t, db, 202, sponsor)
	if err := service.BuildChain(db, sponsor, second); err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	var claim models.UserReferralRewardClaim
	if err := db.Where("tg_id = ?", sponsor.TgID).First(&claim).Error; err != nil {
		t.Fatalf("expected a claim row at the threshold: %v", err)
	}
	if claim.IsClaimed {
		t.Errorf("fresh claim must be unclaimed")
	}
	if claim.MilestoneID != milestone.ID {
		t.Errorf("claim points at the wrong milestone")
	}
}

func TestMilestoneSkippedWhenCounterJumpsPast(t *testing.T) {
	db := setupTestDB(t)
	rewards := NewRewardService(db)

	milestone := models.ReferralRewardMilestone{RefCount: 2, Amount: 500}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	user := createTestUser(t, db, 100, nil)

	// Counter moved from 1 straight to 3, never landing on 2.
	if err := rewards.GrantReferralMilestone(db, user.TgID, 3); err != nil {
		t.Fatalf("GrantReferralMilestone failed: %v", err)
	}

	var count int64
	db.Model(&models.UserReferralRewardClaim{}).Where("tg_id = ?", user.TgID).Count(&count)
	if count != 0 {
		t.Errorf("milestone granted despite counter skipping its threshold")
	}
}

func TestGrantMilestoneIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	rewards := NewRewardService(db)

	milestone := models.ReferralRewardMilestone{RefCount: 1, Amount: 500}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	user := createTestUser(t, db, 100, nil)

	for i := 0; i < 2; i++ {
		if err := rewards.GrantReferralMilestone(db, user.TgID, 1); err != nil {
			t.Fatalf("GrantReferralMilestone call %d failed: %v", i+1, err)
		}
	}

	var count int64
	db.Model(&models.UserReferralRewardClaim{}).Where("tg_id = ?", user.TgID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one claim row, got %d", count)
	}
}

func TestReferralStats(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, NewRewardService(db))

	chain := buildSponsorChain(t, db, 2)
	newUser := createTestUser(t, db, 1, chain[0])
	if err := service.BuildChain(db, chain[0], newUser); err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	// chain[1] sees the new user at level 2.
	stats, err := service.Stats(chain[1].TgID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalReferrals != 1 {
		t.Errorf("expected 1 referral, got %d", stats.TotalReferrals)
	}
	if stats.LevelStats[2] != 1 {
		t.Errorf("expected the referral at level 2, got %v", stats.LevelStats)
	}
}
