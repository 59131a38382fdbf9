package models

import (
	"time"

	"github.com/google/uuid"
)

// Currency is a unit a listing can be priced in. "GDP" is the in-game
// soft currency; it is the only one purchases are settled in.
type Currency struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"uniqueIndex;size:10;not null" json:"code"`
	Name string `gorm:"size:50" json:"name"`
}

func (Currency) TableName() string {
	return "currencies"
}

// GDPCurrencyCode is the only currency code supported for market purchases
const GDPCurrencyCode = "GDP"

// MarketListing is an active offer of one enterprise for sale. Creating a
// listing removes the enterprise from the seller's owned set.
type MarketListing struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	TgID         int64         `gorm:"not null;index" json:"tg_id"`
	EnterpriseID uint          `gorm:"not null;index" json:"enterprise_id"`
	Enterprise   *Enterprise   `gorm:"foreignKey:EnterpriseID" json:"enterprise,omitempty"`
	Prices       []MarketPrice `gorm:"foreignKey:ListingID" json:"prices,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (MarketListing) TableName() string {
	return "market_listings"
}

// MarketPrice is one currency-denominated price on a listing. At most one
// price row per (listing, currency) pair.
type MarketPrice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ListingID  uint      `gorm:"not null;index;uniqueIndex:idx_listing_currency" json:"listing_id"`
	CurrencyID uint      `gorm:"not null;uniqueIndex:idx_listing_currency" json:"currency_id"`
	Currency   *Currency `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Price      int64     `gorm:"not null" json:"price"`
}

func (MarketPrice) TableName() string {
	return "market_prices"
}

// MarketHistory is the immutable record written when a listing is bought
type MarketHistory struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TgID         int64       `gorm:"not null;index" json:"tg_id"` // seller
	EnterpriseID uint        `gorm:"not null" json:"enterprise_id"`
	Enterprise   *Enterprise `gorm:"foreignKey:EnterpriseID" json:"enterprise,omitempty"`
	BuyerID      uuid.UUID   `gorm:"type:uuid;not null" json:"buyer_id"`
	CurrencyID   uint        `gorm:"not null" json:"currency_id"`
	SoldPrice    int64       `gorm:"not null" json:"sold_price"`
	CreatedAt    time.Time   `json:"created_at"`
	SoldAt       time.Time   `json:"sold_at"`
}

func (MarketHistory) TableName() string {
	return "market_history"
}
