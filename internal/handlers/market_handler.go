package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/services"
)

type MarketHandler struct {
	marketService *services.MarketService
}

func NewMarketHandler(marketService *services.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// CreateListing puts an owned enterprise up for sale
func (h *MarketHandler) CreateListing(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		EnterpriseID uint   `json:"enterprise_id" binding:"required"`
		CurrencyCode string `json:"currency_code" binding:"required"`
		Price        int64  `json:"price" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.marketService.CreateListing(tgID, req.EnterpriseID, req.CurrencyCode, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// AddPrice attaches another currency price to a listing
func (h *MarketHandler) AddPrice(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var req struct {
		CurrencyCode string `json:"currency_code" binding:"required"`
		Price        int64  `json:"price" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := h.marketService.AddPrice(tgID, uint(listingID), req.CurrencyCode, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, price)
}

// Buy settles a listing in GDP
func (h *MarketHandler) Buy(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var req struct {
		CurrencyCode string `json:"currency_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := h.marketService.Buy(tgID, uint(listingID), req.CurrencyCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Browse returns active listings matching filter query params
func (h *MarketHandler) Browse(c *gin.Context) {
	filter := services.BrowseFilter{
		CurrencyCode: c.Query("currency"),
	}
	filter.Offset, filter.Limit = pagination(c)

	if raw := c.Query("type_id"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.TypeID = &v
		}
	}
	if raw := c.Query("min_capacity"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MinCapacity = &v
		}
	}
	if raw := c.Query("max_capacity"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			filter.MaxCapacity = &v
		}
	}
	if raw := c.Query("min_price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("max_price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.MaxPrice = &v
		}
	}

	listings, err := h.marketService.Browse(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// MyListings returns the caller's open listings
func (h *MarketHandler) MyListings(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	listings, err := h.marketService.UserActiveListings(tgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// MyHistory returns the caller's past sales
func (h *MarketHandler) MyHistory(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	history, err := h.marketService.UserHistory(tgID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
