package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/config"
	"tycoon-backend/internal/models"
)

// AuthService issues and rotates the access/refresh token pair
type AuthService struct {
	db         *gorm.DB
	tokens     *auth.TokenManager
	users      *UserService
	cfg        config.AppConfig
	botToken   string
	refreshTTL time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, tokens *auth.TokenManager, users *UserService, cfg config.AppConfig, botToken string) *AuthService {
	return &AuthService{
		db:         db,
		tokens:     tokens,
		users:      users,
		cfg:        cfg,
		botToken:   botToken,
		refreshTTL: time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour,
	}
}

// TokenPair is an issued access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login verifies a webapp init-data payload, registers or syncs the user,
// records the login for the daily streak and issues a token pair. Errors
// from the streak update are logged, not propagated, so a reward hiccup
// never blocks login.
func (s *AuthService) Login(initData string, refTgID *int64) (*models.User, *TokenPair, error) {
	data, err := auth.VerifyInitData(s.botToken, initData)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if data.User == nil {
		return nil, nil, fmt.Errorf("%w: init data has no user", ErrUnauthorized)
	}

	if refTgID == nil && data.StartParam != "" {
		if parsed, ok := parseRefParam(data.StartParam); ok {
			refTgID = &parsed
		}
	}

	user, err := s.users.Register(RegisterInput{
		TgID:      data.User.ID,
		ChatID:    data.User.ID,
		Username:  data.User.Username,
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
		IsBot:     data.User.IsBot,
		IsPremium: data.User.IsPremium,
		RefTgID:   refTgID,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.RecordLogin(user.TgID, data.AuthDate); err != nil {
		log.Printf("Failed to record login for %d: %v", user.TgID, err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// parseRefParam extracts a sponsor telegram id from a deep-link start
// parameter, accepting both "12345" and "ref_12345".
func parseRefParam(param string) (int64, bool) {
	param = strings.TrimPrefix(param, "ref_")
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SwaggerLogin issues a token pair for an existing user when the shared
// development secret matches. Used only by the API docs UI.
func (s *AuthService) SwaggerLogin(secret string, tgID int64) (*TokenPair, error) {
	if s.cfg.SwaggerLoginSecret == "" || secret != s.cfg.SwaggerLoginSecret {
		return nil, fmt.Errorf("%w: bad login secret", ErrUnauthorized)
	}

	user, err := s.users.GetByTgID(tgID)
	if err != nil {
		return nil, err
	}
	return s.issuePair(user)
}

// issuePair signs an access token and persists a refresh session
func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateToken(user.ID, user.TgID)
	if err != nil {
		return nil, err
	}

	session := models.RefreshSession{
		RefreshToken: uuid.New(),
		UserID:       user.ID,
		ExpiresIn:    time.Now().Add(s.refreshTTL).Unix(),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create refresh session: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: session.RefreshToken.String(),
		ExpiresIn:    session.ExpiresIn,
	}, nil
}

// Refresh rotates a refresh token: the presented session is deleted and a
// fresh pair is issued. Expired or unknown tokens are unauthorized.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed refresh token", ErrUnauthorized)
	}

	var user models.User

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var session models.RefreshSession
		if err := tx.Where("refresh_token = ?", token).First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: unknown refresh token", ErrUnauthorized)
			}
			return err
		}

		if err := tx.Delete(&models.RefreshSession{}, session.ID).Error; err != nil {
			return err
		}

		if session.ExpiresIn < time.Now().Unix() {
			return fmt.Errorf("%w: refresh token expired", ErrUnauthorized)
		}

		if err := tx.Where("id = ?", session.UserID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: user", ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issuePair(&user)
}

// Logout deletes the presented refresh session
func (s *AuthService) Logout(refreshToken string) error {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return fmt.Errorf("%w: malformed refresh token", ErrUnauthorized)
	}

	result := s.db.Where("refresh_token = ?", token).Delete(&models.RefreshSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: unknown refresh token", ErrUnauthorized)
	}
	return nil
}

// AbortAllSessions deletes every refresh session of a user
func (s *AuthService) AbortAllSessions(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.RefreshSession{}).Error
}

// PruneExpiredSessions removes refresh sessions past their expiry
func (s *AuthService) PruneExpiredSessions() (int64, error) {
	result := s.db.Where("expires_in < ?", time.Now().Unix()).
		Delete(&models.RefreshSession{})
	return result.RowsAffected, result.Error
}
