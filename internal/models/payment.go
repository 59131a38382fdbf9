package models

import (
	"time"
)

// StarsPayment is a confirmed Telegram Stars payment. The primary key is
// the telegram payment charge id, so duplicate webhook delivery of the
// same charge cannot insert a second row.
type StarsPayment struct {
	ID                      string    `gorm:"primaryKey;size:128" json:"id"`
	Currency                string    `gorm:"size:10;not null" json:"currency"`
	TotalAmount             int       `gorm:"not null" json:"total_amount"`
	InvoicePayload          string    `gorm:"size:1000" json:"invoice_payload"`
	ProviderPaymentChargeID *string   `gorm:"size:128" json:"provider_payment_charge_id,omitempty"`
	ShippingOptionID        *string   `gorm:"size:128" json:"shipping_option_id,omitempty"`
	TgID                    int64     `gorm:"not null;index" json:"tg_id"`
	CreatedAt               time.Time `json:"created_at"`
}

func (StarsPayment) TableName() string {
	return "stars_payments"
}

// StarsRefund records a refunded Stars payment
type StarsRefund struct {
	ID          string    `gorm:"primaryKey;size:128" json:"id"`
	Currency    string    `gorm:"size:10;not null" json:"currency"`
	TotalAmount int       `gorm:"not null" json:"total_amount"`
	TgID        int64     `gorm:"not null;index" json:"tg_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (StarsRefund) TableName() string {
	return "stars_refunds"
}

// PaymentPayload is the product metadata attached to a Stars invoice
type PaymentPayload struct {
	UserID      int64  `json:"user_id"`
	ProductType string `json:"product_type"`
	ProductID   uint   `json:"product_id"`
}

// Product types dispatched by the payment bridge
const (
	ProductTypeSlot       = "slot"
	ProductTypeEnterprise = "enterprise"
	ProductTypeBoost      = "boost"
	ProductTypeCase       = "case"
)
