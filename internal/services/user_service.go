package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tycoon-backend/internal/config"
	"tycoon-backend/internal/models"
)

// startingCountryID is the country every player begins in; relocation
// rules treat it specially.
const startingCountryID = 1

// UserService handles user lifecycle and progression logic
type UserService struct {
	db        *gorm.DB
	game      config.GameConfig
	referrals *ReferralService
	rewards   *RewardService
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB, game config.GameConfig, referrals *ReferralService, rewards *RewardService) *UserService {
	return &UserService{
		db:        db,
		game:      game,
		referrals: referrals,
		rewards:   rewards,
	}
}

// RegisterInput carries the telegram profile of a user making first contact
type RegisterInput struct {
	TgID      int64
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
	IsPremium bool
	// RefTgID is the telegram id of the direct sponsor from a deep link
	// or webapp start_param, if any.
	RefTgID *int64
}

// Register creates a user on first contact, or refreshes the stored
// profile fields when the user already exists. New users get starting
// enterprises and are wired into their sponsor's referral graph.
func (s *UserService) Register(input RegisterInput) (*models.User, error) {
	var user models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("tg_id = ?", input.TgID).First(&user).Error
		if err == nil {
			return s.syncProfile(tx, &user, input)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		var sponsor *models.User
		if input.RefTgID != nil && *input.RefTgID != input.TgID {
			var owner models.User
			if err := tx.Where("tg_id = ?", *input.RefTgID).First(&owner).Error; err == nil {
				sponsor = &owner
			}
		}

		user = models.User{
			TgID:            input.TgID,
			TgChatID:        input.ChatID,
			IsBot:           input.IsBot,
			IsPremium:       input.IsPremium,
			Level:           1,
			Energy:          s.game.EnergyLimit,
			EnterpriseSlots: s.game.EnterpriseMinSlots,
			IsActive:        true,
		}
		applyProfile(&user, input)
		if sponsor != nil {
			user.ReferrerID = &sponsor.ID
		}

		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		if err := s.grantStartingEnterprises(tx, &user); err != nil {
			return err
		}

		if sponsor != nil {
			if err := s.referrals.BuildChain(tx, sponsor, &user); err != nil {
				return err
			}
		}

		log.Printf("New user created: tg_id=%d (id: %s)", user.TgID, user.ID)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// applyProfile copies the telegram profile fields onto a user row
func applyProfile(user *models.User, input RegisterInput) {
	if input.Username != "" {
		user.Username = &input.Username
		url := "https://t.me/" + input.Username
		user.TgURL = &url
	}
	if input.FirstName != "" {
		user.FirstName = &input.FirstName
	}
	if input.LastName != "" {
		user.LastName = &input.LastName
	}
}

// syncProfile refreshes profile fields of an existing user
func (s *UserService) syncProfile(tx *gorm.DB, user *models.User, input RegisterInput) error {
	applyProfile(user, input)
	return tx.Save(user).Error
}

// grantStartingEnterprises gives a new user their initial enterprises and
// rolls their capacity into total_capacity.
func (s *UserService) grantStartingEnterprises(tx *gorm.DB, user *models.User) error {
	totalCapacity := 0

	for id := uint(1); id <= uint(s.game.StartingEnterprises); id++ {
		var enterprise models.Enterprise
		if err := tx.Where("id = ?", id).First(&enterprise).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue // catalog not seeded, nothing to grant
			}
			return err
		}

		owned := models.UserEnterprise{
			TgID:         user.TgID,
			EnterpriseID: enterprise.ID,
		}
		if err := tx.Create(&owned).Error; err != nil {
			return err
		}
		totalCapacity += enterprise.Capacity
	}

	if totalCapacity == 0 {
		return nil
	}

	user.TotalCapacity = totalCapacity
	return tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("total_capacity", totalCapacity).Error
}

// GetByTgID retrieves a user by telegram id
func (s *UserService) GetByTgID(tgID int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by internal id
func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// Profile is the aggregate returned to the webapp
type Profile struct {
	User   *models.User       `json:"user"`
	Level  *models.Level      `json:"level,omitempty"`
	Boosts []models.UserBoost `json:"boosts,omitempty"`
}

// GetProfile returns the user row with its level definition and active boosts
func (s *UserService) GetProfile(tgID int64) (*Profile, error) {
	user, err := s.GetByTgID(tgID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Country").Preload("Region").Where("tg_id = ?", tgID).First(user).Error; err != nil {
		return nil, err
	}

	profile := &Profile{User: user}

	var level models.Level
	if err := s.db.Where("level = ?", user.Level).First(&level).Error; err == nil {
		profile.Level = &level
	}

	var boosts []models.UserBoost
	if err := s.db.Where("tg_id = ? AND expires_at > ?", tgID, time.Now()).
		Preload("Boost").Find(&boosts).Error; err != nil {
		return nil, err
	}
	profile.Boosts = boosts

	return profile, nil
}

// ProfileUpdate carries the mutable profile fields
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	TgURL     *string `json:"tg_url,omitempty"`
	CountryID *uint   `json:"country_id,omitempty"`
	RegionID  *uint   `json:"region_id,omitempty"`
}

// UpdateProfile applies guarded profile updates. Switching country (or
// region inside the starting country) halves the game balance.
func (s *UserService) UpdateProfile(tgID int64, upd ProfileUpdate) (*models.User, error) {
	var user models.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		if upd.FirstName != nil {
			user.FirstName = upd.FirstName
		}
		if upd.LastName != nil {
			user.LastName = upd.LastName
		}
		if upd.TgURL != nil {
			user.TgURL = upd.TgURL
		}

		if upd.CountryID != nil {
			var country models.Country
			if err := tx.Where("id = ?", *upd.CountryID).First(&country).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: country %d", ErrNotFound, *upd.CountryID)
				}
				return err
			}

			if user.CountryID == nil || *user.CountryID != *upd.CountryID {
				user.GameBalance /= 2
			}
			user.CountryID = upd.CountryID
			user.RegionID = nil
		}

		if upd.RegionID != nil {
			if user.CountryID == nil {
				return fmt.Errorf("%w: cannot set region while country is empty", ErrBadRequest)
			}

			var region models.Region
			if err := tx.Where("id = ? AND country_id = ?", *upd.RegionID, *user.CountryID).First(&region).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fmt.Errorf("%w: region for country %d", ErrNotFound, *user.CountryID)
				}
				return err
			}

			// Moving between regions of the starting country is a
			// relocation too and costs half the balance.
			if upd.CountryID == nil && *user.CountryID == startingCountryID &&
				(user.RegionID == nil || *user.RegionID != *upd.RegionID) {
				user.GameBalance /= 2
			}
			user.RegionID = upd.RegionID
		}

		return tx.Save(&user).Error
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TapResult reports the outcome of a tap-batch balance update
type TapResult struct {
	Message string `json:"message"`
	Balance int64  `json:"balance"`
	Energy  int    `json:"energy"`
}

// TapUpdateBalance credits the balance for taps made since the last sync.
// The client reports its cumulative tap count for the day; the server
// derives the delta from remaining energy and pays out at the level's
// tap price, bounded by the energy left.
func (s *UserService) TapUpdateBalance(tgID int64, newTapCount int) (*TapResult, error) {
	var result TapResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		if user.Energy == 0 {
			result = TapResult{Message: "the energy is gone", Balance: user.GameBalance}
			return nil
		}

		currentTapCount := s.game.EnergyLimit - user.Energy
		if newTapCount < currentTapCount || newTapCount < 0 {
			result = TapResult{Message: "tap count cannot go backwards", Balance: user.GameBalance, Energy: user.Energy}
			return nil
		}
		if newTapCount == currentTapCount {
			result = TapResult{Message: "make taps before updating the balance", Balance: user.GameBalance, Energy: user.Energy}
			return nil
		}

		delta := newTapCount - currentTapCount

		var level models.Level
		if err := tx.Where("level = ?", user.Level).First(&level).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: level %d has no tap price", ErrBadRequest, user.Level)
			}
			return err
		}

		if delta > user.Energy {
			delta = user.Energy
		}

		user.GameBalance += level.TapPrice * int64(delta)
		user.Energy -= delta

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"game_balance": user.GameBalance,
				"energy":       user.Energy,
			}).Error; err != nil {
			return err
		}

		result = TapResult{Message: "balance updated", Balance: user.GameBalance, Energy: user.Energy}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// BuySlot adds one enterprise slot, bounded by the configured maximum
func (s *UserService) BuySlot(tgID int64) (int, error) {
	slots := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		if user.EnterpriseSlots >= s.game.EnterpriseMaxSlots {
			return fmt.Errorf("%w: slot count is already at its maximum", ErrBadRequest)
		}

		user.EnterpriseSlots++
		slots = user.EnterpriseSlots
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("enterprise_slots", user.EnterpriseSlots).Error
	})

	if err != nil {
		return 0, err
	}
	return slots, nil
}

// RecordLogin advances the daily-login streak from the supplied auth
// timestamp: first login starts the streak, a one-day gap extends it, a
// longer gap resets it and purges the user's daily claim rows. Whatever
// streak value results is run through the daily milestone grant. One
// transaction per call.
func (s *UserService) RecordLogin(tgID int64, authTimestamp int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("tg_id = ?", tgID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}

		today := time.Now().UTC().Truncate(24 * time.Hour)

		if user.AuthDate == nil {
			user.DailyRewardCounter = 1
		} else {
			lastLogin := time.Unix(*user.AuthDate, 0).UTC().Truncate(24 * time.Hour)
			if today.After(lastLogin) {
				gapDays := int(today.Sub(lastLogin).Hours() / 24)
				if gapDays > 1 {
					user.DailyRewardCounter = 1
					if err := tx.Where("tg_id = ?", tgID).
						Delete(&models.UserDailyRewardClaim{}).Error; err != nil {
						return err
					}
				} else {
					user.DailyRewardCounter++
				}
			}
			// Same calendar day: streak unchanged.
		}

		if err := s.rewards.GrantDailyMilestone(tx, tgID, user.DailyRewardCounter); err != nil {
			return err
		}

		if user.AuthDate == nil || *user.AuthDate != authTimestamp {
			user.AuthDate = &authTimestamp
		}

		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"daily_reward_counter": user.DailyRewardCounter,
				"auth_date":            user.AuthDate,
			}).Error
	})
}

// RegionRatingEntry is one row of the per-region balance leaderboard
type RegionRatingEntry struct {
	ID        uuid.UUID `json:"id"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Gdp       int64     `json:"gdp"`
	Capacity  int       `json:"capacity"`
}

// RegionRating returns users of a region ordered by balance
func (s *UserService) RegionRating(regionID uint, offset, limit int) ([]RegionRatingEntry, error) {
	var users []models.User
	if err := s.db.Where("region_id = ?", regionID).
		Order("game_balance DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]RegionRatingEntry, 0, len(users))
	for _, user := range users {
		out = append(out, RegionRatingEntry{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Gdp:       user.GameBalance,
			Capacity:  user.TotalCapacity,
		})
	}
	return out, nil
}

// BotStats summarizes the user base for the admin /stat command
type BotStats struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveUsers       int64 `json:"active_users"`
	BlockedUsers      int64 `json:"blocked_users"`
	NewUsersLastDay   int64 `json:"new_users_last_day"`
	NewUsersLastWeek  int64 `json:"new_users_last_week"`
	NewUsersLastMonth int64 `json:"new_users_last_month"`
}

// Stats returns user-base totals and growth windows
func (s *UserService) Stats() (*BotStats, error) {
	now := time.Now().UTC()
	stats := &BotStats{}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).
		Where("energy < ? AND updated_at >= ?", s.game.EnergyLimit, now.Truncate(24*time.Hour)).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("is_active = ?", false).
		Count(&stats.BlockedUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("created_at >= ?", now.AddDate(0, 0, -1)).
		Count(&stats.NewUsersLastDay).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.NewUsersLastWeek).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("created_at >= ?", now.AddDate(0, 0, -30)).
		Count(&stats.NewUsersLastMonth).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// ListUsers returns a page of users for the admin surface
func (s *UserService) ListUsers(offset, limit int) ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Chatable returns users a broadcast can be delivered to
func (s *UserService) Chatable(limit int) ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("is_active = ? AND tg_chat_id <> 0", true).
		Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Delete removes a user row (administrative path only)
func (s *UserService) Delete(id uuid.UUID) error {
	result := s.db.Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}
