package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/config"
	"tycoon-backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         config.AppConfig
}

func NewAuthHandler(authService *services.AuthService, cfg config.AppConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// setAuthCookies writes the token pair as http-only cookies
func (h *AuthHandler) setAuthCookies(c *gin.Context, pair *services.TokenPair) {
	accessMaxAge := h.cfg.AccessTokenTTLMinutes * 60
	refreshMaxAge := h.cfg.RefreshTokenTTLDays * 24 * 3600

	c.SetCookie("access_token", pair.AccessToken, accessMaxAge, "/", "", true, true)
	c.SetCookie("refresh_token", pair.RefreshToken, refreshMaxAge, "/", "", true, true)
}

// Login verifies webapp init data and issues a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		InitData string `json:"init_data" binding:"required"`
		RefTgID  *int64 `json:"ref_tg_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.authService.Login(req.InitData, req.RefTgID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// SwaggerLogin issues a token pair against the development secret
func (h *AuthHandler) SwaggerLogin(c *gin.Context) {
	var req struct {
		Secret string `json:"secret" binding:"required"`
		TgID   int64  `json:"tg_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.authService.SwaggerLogin(req.Secret, req.TgID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// refreshTokenFrom reads the refresh token from the body or cookie
func refreshTokenFrom(c *gin.Context) string {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie("refresh_token"); err == nil {
		return cookie
	}
	return ""
}

// Refresh rotates the refresh token and issues a new pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token required"})
		return
	}

	pair, err := h.authService.Refresh(token)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// Logout deletes the presented refresh session and clears cookies
func (h *AuthHandler) Logout(c *gin.Context) {
	token := refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token required"})
		return
	}

	if err := h.authService.Logout(token); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie("access_token", "", -1, "/", "", true, true)
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// LogoutAll deletes every refresh session of the current user
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.AbortAllSessions(userID); err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie("access_token", "", -1, "/", "", true, true)
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "all sessions aborted"})
}
