package services

import (
	"errors"
	"testing"

	"tycoon-backend/internal/models"
)

func TestClaimReferralReward(t *testing.T) {
	db := setupTestDB(t)
	rewards := NewRewardService(db)

	milestone := models.ReferralRewardMilestone{RefCount: 1, Amount: 500}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	user := createTestUser(t, db, 100, nil)
	db.Model(user).Update("referrals_counter", 1)

	if err := rewards.GrantReferralMilestone(db, user.TgID, 1); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	claim, err := rewards.ClaimReferralReward(user.TgID, 1)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claim.IsClaimed {
		t.Errorf("claim flag not flipped")
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.GameBalance != 500 {
		t.Errorf("expected balance 500 after claim, got %d", stored.GameBalance)
	}

	// Second claim must conflict and leave the balance alone.
	if _, err := rewards.ClaimReferralReward(user.TgID, 1); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on double claim, got %v", err)
	}

	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.GameBalance != 500 {
		t.Errorf("double claim changed the balance: %d", stored.GameBalance)
	}
}

func TestClaimReferralRewardErrors(t *testing.T) {
	db := setupTestDB(t)
	rewards := NewRewardService(db)

	milestone := models.ReferralRewardMilestone{RefCount: 5, Amount: 3000}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	if _, err := rewards.ClaimReferralReward(999, 5); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}

	user := createTestUser(t, db, 100, nil)

	// No referrals at all.
	if _, err := rewards.ClaimReferralReward(user.TgID, 5); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest with zero referrals, got %v", err)
	}

	db.Model(user).Update("referrals_counter", 3)

	// Milestone exists but no claim row was ever granted.
	if _, err := rewards.ClaimReferralReward(user.TgID, 5); !errors.Is(err, ErrTaskNotCompleted) {
		t.Errorf("expected ErrTaskNotCompleted without a claim row, got %v", err)
	}

	// No milestone at that threshold.
	if _, err := rewards.ClaimReferralReward(user.TgID, 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown threshold, got %v", err)
	}
}

func TestClaimDailyReward(t *testing.T) {
	db := setupTestDB(t)
	rewards := NewRewardService(db)

	milestone := models.DailyRewardMilestone{DayNumber: 3, Amount: 350}
	if err := db.Create(&milestone).Error; err != nil {
		t.Fatalf("failed to create milestone: %v", err)
	}

	user := createTestUser(t, db, 100, nil)

	if _, err := rewards.ClaimDailyReward(user.TgID, 3); !errors.Is(err, ErrTaskNotCompleted) {
		t.Errorf("expected ErrTaskNotCompleted before the streak reaches day 3, got %v", err)
	}

	if err := rewards.GrantDailyMilestone(db, user.TgID, 3); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	claim, err := rewards.ClaimDailyReward(user.TgID, 3)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claim.IsClaimed {
		t.Errorf("claim flag not flipped")
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.GameBalance != 350 {
		t.Errorf("expected balance 350 after claim, got %d", stored.GameBalance)
	}

	if _, err := rewards.ClaimDailyReward(user.TgID, 3); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict on double claim, got %v", err)
	}
}

func TestListReferralRewards(t *testing.T) {
	db := setupTestDB(t)
	rewards := NewRewardService(db)

	for _, m := range []models.ReferralRewardMilestone{
		{RefCount: 1, Amount: 500},
		{RefCount: 5, Amount: 3000},
	} {
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("failed to create milestone: %v", err)
		}
	}

	user := createTestUser(t, db, 100, nil)
	if err := rewards.GrantReferralMilestone(db, user.TgID, 1); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	items, err := rewards.ListReferralRewards(user.TgID, 0, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 milestones, got %d", len(items))
	}
	if !items[0].IsCompleted || items[0].IsClaimed {
		t.Errorf("first milestone should be completed and unclaimed: %+v", items[0])
	}
	if items[1].IsCompleted {
		t.Errorf("second milestone should be incomplete: %+v", items[1])
	}
}
