package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// MarketService handles listing, pricing and buying of enterprises
type MarketService struct {
	db *gorm.DB
}

// NewMarketService creates a new MarketService
func NewMarketService(db *gorm.DB) *MarketService {
	return &MarketService{db: db}
}

// CreateListing puts an owned enterprise up for sale at a single price.
// The enterprise leaves the seller's owned set in the same transaction.
func (s *MarketService) CreateListing(tgID int64, enterpriseID uint, currencyCode string, price int64) (*models.MarketListing, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrBadRequest)
	}

	var listing models.MarketListing

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var currency models.Currency
		if err := tx.Where("code = ?", currencyCode).First(&currency).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: currency %s", ErrNotFound, currencyCode)
			}
			return err
		}

		var owned models.UserEnterprise
		if err := tx.Where("tg_id = ? AND enterprise_id = ?", tgID, enterpriseID).
			First(&owned).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: enterprise %d is not owned", ErrNotFound, enterpriseID)
			}
			return err
		}

		listing = models.MarketListing{
			TgID:         tgID,
			EnterpriseID: enterpriseID,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		priceRow := models.MarketPrice{
			ListingID:  listing.ID,
			CurrencyID: currency.ID,
			Price:      price,
		}
		if err := tx.Create(&priceRow).Error; err != nil {
			return fmt.Errorf("failed to create listing price: %w", err)
		}
		listing.Prices = []models.MarketPrice{priceRow}

		if err := tx.Delete(&models.UserEnterprise{}, owned.ID).Error; err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// AddPrice attaches a price in another currency to an existing listing.
// At most one price row per (listing, currency) pair.
func (s *MarketService) AddPrice(tgID int64, listingID uint, currencyCode string, price int64) (*models.MarketPrice, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrBadRequest)
	}

	var priceRow models.MarketPrice

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.MarketListing
		if err := tx.Where("id = ?", listingID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: listing %d", ErrNotFound, listingID)
			}
			return err
		}
		if listing.TgID != tgID {
			return fmt.Errorf("%w: listing belongs to another seller", ErrForbidden)
		}

		var currency models.Currency
		if err := tx.Where("code = ?", currencyCode).First(&currency).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: currency %s", ErrNotFound, currencyCode)
			}
			return err
		}

		var existing models.MarketPrice
		err := tx.Where("listing_id = ? AND currency_id = ?", listingID, currency.ID).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: price in %s already set for this listing", ErrConflict, currencyCode)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		priceRow = models.MarketPrice{
			ListingID:  listingID,
			CurrencyID: currency.ID,
			Price:      price,
		}
		return tx.Create(&priceRow).Error
	})

	if err != nil {
		return nil, err
	}
	return &priceRow, nil
}

// Buy settles a listing in GDP: debit buyer, credit seller, transfer the
// enterprise, drop the listing and record history, all in one transaction.
func (s *MarketService) Buy(buyerTgID int64, listingID uint, currencyCode string) (*models.MarketHistory, error) {
	var history models.MarketHistory

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var currency models.Currency
		if err := tx.Where("code = ?", currencyCode).First(&currency).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: currency %s", ErrNotFound, currencyCode)
			}
			return err
		}

		var listing models.MarketListing
		if err := tx.Where("id = ?", listingID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: listing %d", ErrNotFound, listingID)
			}
			return err
		}

		var priceRow models.MarketPrice
		if err := tx.Where("listing_id = ? AND currency_id = ?", listingID, currency.ID).
			First(&priceRow).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: listing has no price in %s", ErrNotFound, currencyCode)
			}
			return err
		}

		var buyer models.User
		if err := tx.Where("tg_id = ?", buyerTgID).First(&buyer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: buyer", ErrNotFound)
			}
			return err
		}

		var seller models.User
		if err := tx.Where("tg_id = ?", listing.TgID).First(&seller).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: seller", ErrNotFound)
			}
			return err
		}

		if currency.Code != models.GDPCurrencyCode {
			return fmt.Errorf("%w: purchases are settled in %s only", ErrBadRequest, models.GDPCurrencyCode)
		}

		if buyer.GameBalance < priceRow.Price {
			return fmt.Errorf("%w: insufficient balance", ErrForbidden)
		}

		if err := debitBalance(tx, buyer.TgID, priceRow.Price); err != nil {
			return err
		}
		if err := creditBalance(tx, seller.TgID, priceRow.Price); err != nil {
			return err
		}

		owned := models.UserEnterprise{
			TgID:         buyer.TgID,
			EnterpriseID: listing.EnterpriseID,
		}
		if err := tx.Create(&owned).Error; err != nil {
			return err
		}

		if err := tx.Where("listing_id = ?", listingID).Delete(&models.MarketPrice{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.MarketListing{}, listingID).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		history = models.MarketHistory{
			TgID:         seller.TgID,
			EnterpriseID: listing.EnterpriseID,
			BuyerID:      buyer.ID,
			CurrencyID:   currency.ID,
			SoldPrice:    priceRow.Price,
			SoldAt:       now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		log.Printf("Market sale: listing %d, enterprise %d, %d %s (seller %d -> buyer %d)",
			listingID, listing.EnterpriseID, priceRow.Price, currency.Code, seller.TgID, buyer.TgID)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &history, nil
}

// BrowseFilter narrows the active-listings query
type BrowseFilter struct {
	CurrencyCode string
	TypeID       *int
	MinCapacity  *int
	MaxCapacity  *int
	MinPrice     *int64
	MaxPrice     *int64
	Offset       int
	Limit        int
}

// Browse returns active listings matching the filter, newest first
func (s *MarketService) Browse(filter BrowseFilter) ([]models.MarketListing, error) {
	query := s.db.Model(&models.MarketListing{}).
		Joins("JOIN enterprises ON enterprises.id = market_listings.enterprise_id").
		Preload("Enterprise").
		Preload("Prices").
		Preload("Prices.Currency")

	if filter.CurrencyCode != "" {
		query = query.
			Joins("JOIN market_prices ON market_prices.listing_id = market_listings.id").
			Joins("JOIN currencies ON currencies.id = market_prices.currency_id").
			Where("currencies.code = ?", filter.CurrencyCode)
		if filter.MinPrice != nil {
			query = query.Where("market_prices.price >= ?", *filter.MinPrice)
		}
		if filter.MaxPrice != nil {
			query = query.Where("market_prices.price <= ?", *filter.MaxPrice)
		}
	}

	if filter.TypeID != nil {
		query = query.Where("enterprises.type_id = ?", *filter.TypeID)
	}
	if filter.MinCapacity != nil {
		query = query.Where("enterprises.capacity >= ?", *filter.MinCapacity)
	}
	if filter.MaxCapacity != nil {
		query = query.Where("enterprises.capacity <= ?", *filter.MaxCapacity)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var listings []models.MarketListing
	if err := query.Order("market_listings.created_at DESC").
		Offset(filter.Offset).Limit(limit).
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// UserActiveListings returns a seller's open listings
func (s *MarketService) UserActiveListings(tgID int64) ([]models.MarketListing, error) {
	var listings []models.MarketListing
	if err := s.db.Where("tg_id = ?", tgID).
		Preload("Enterprise").
		Preload("Prices").
		Preload("Prices.Currency").
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// UserHistory returns sales where the user was the seller
func (s *MarketService) UserHistory(tgID int64, offset, limit int) ([]models.MarketHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var history []models.MarketHistory
	if err := s.db.Where("tg_id = ?", tgID).
		Preload("Enterprise").
		Order("sold_at DESC").
		Offset(offset).Limit(limit).
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
