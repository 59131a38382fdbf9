package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/services"
)

type UserHandler struct {
	userService       *services.UserService
	referralService   *services.ReferralService
	rewardService     *services.RewardService
	enterpriseService *services.EnterpriseService
	caseService       *services.CaseService
}

func NewUserHandler(
	userService *services.UserService,
	referralService *services.ReferralService,
	rewardService *services.RewardService,
	enterpriseService *services.EnterpriseService,
	caseService *services.CaseService,
) *UserHandler {
	return &UserHandler{
		userService:       userService,
		referralService:   referralService,
		rewardService:     rewardService,
		enterpriseService: enterpriseService,
		caseService:       caseService,
	}
}

// GetProfile returns the current user with level and active boosts
func (h *UserHandler) GetProfile(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.userService.GetProfile(tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies guarded profile updates
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(tgID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Tap credits the balance for taps made since the last sync
func (h *UserHandler) Tap(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		TapCount int `json:"tap_count" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.userService.TapUpdateBalance(tgID, req.TapCount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReferrals returns the user's direct referrals and per-level counts
func (h *UserHandler) GetReferrals(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	referrals, err := h.referralService.Referrals(tgID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.referralService.Stats(tgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referrals": referrals,
		"by_level":  stats,
	})
}

// GetReferralRewards lists referral milestones with completion state
func (h *UserHandler) GetReferralRewards(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	rewards, err := h.rewardService.ListReferralRewards(tgID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// ClaimReferralReward collects a completed referral milestone
func (h *UserHandler) ClaimReferralReward(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		RefCount int `json:"ref_count" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.rewardService.ClaimReferralReward(tgID, req.RefCount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reward claimed", "claim": claim})
}

// GetDailyRewards lists daily milestones with completion state
func (h *UserHandler) GetDailyRewards(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	rewards, err := h.rewardService.ListDailyRewards(tgID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// ClaimDailyReward collects a completed daily milestone
func (h *UserHandler) ClaimDailyReward(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		DayNumber int `json:"day_number" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.rewardService.ClaimDailyReward(tgID, req.DayNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reward claimed", "claim": claim})
}

// GetEnterprises returns the catalog and the user's owned set
func (h *UserHandler) GetEnterprises(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	catalog, err := h.enterpriseService.Catalog()
	if err != nil {
		respondError(c, err)
		return
	}

	owned, err := h.enterpriseService.Owned(tgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"catalog": catalog,
		"owned":   owned,
	})
}

// BuyEnterprise purchases an enterprise with game balance
func (h *UserHandler) BuyEnterprise(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		EnterpriseID uint `json:"enterprise_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.enterpriseService.BuyForGame(tgID, req.EnterpriseID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "enterprise purchased"})
}

// OpenCase draws a reward from a held case
func (h *UserHandler) OpenCase(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		CaseID uint `json:"case_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.caseService.Open(tgID, req.CaseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "case opened", "amount": amount})
}

// RegionRating returns a region's balance leaderboard
func (h *UserHandler) RegionRating(c *gin.Context) {
	regionID := intQuery(c, "region_id", 0)
	if regionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region_id required"})
		return
	}

	offset, limit := pagination(c)
	rating, err := h.userService.RegionRating(uint(regionID), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating})
}
