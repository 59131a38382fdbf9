package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

// PaymentService persists Telegram Stars payments and dispatches
// product fulfillment.
type PaymentService struct {
	db          *gorm.DB
	users       *UserService
	enterprises *EnterpriseService
	boosts      *BoostService
	cases       *CaseService
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(db *gorm.DB, users *UserService, enterprises *EnterpriseService, boosts *BoostService, cases *CaseService) *PaymentService {
	return &PaymentService{
		db:          db,
		users:       users,
		enterprises: enterprises,
		boosts:      boosts,
		cases:       cases,
	}
}

// SavePayment records a confirmed payment. Redelivery of the same charge
// id is treated as already processed.
func (s *PaymentService) SavePayment(payment *models.StarsPayment) error {
	err := s.db.Create(payment).Error
	if err != nil {
		var existing models.StarsPayment
		if s.db.Where("id = ?", payment.ID).First(&existing).Error == nil {
			return fmt.Errorf("%w: payment %s already recorded", ErrConflict, payment.ID)
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// ParsePayload decodes the product metadata attached to an invoice
func ParsePayload(raw string) (*models.PaymentPayload, error) {
	var payload models.PaymentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed payment payload", ErrBadRequest)
	}
	if payload.ProductType == "" {
		return nil, fmt.Errorf("%w: payment payload has no product_type", ErrBadRequest)
	}
	return &payload, nil
}

// Fulfill dispatches to the product-specific grant routine. Each branch
// runs its own transaction; an unknown product type is an error so a paid
// but ungrantable purchase surfaces instead of vanishing.
func (s *PaymentService) Fulfill(payload *models.PaymentPayload) error {
	switch payload.ProductType {
	case models.ProductTypeSlot:
		_, err := s.users.BuySlot(payload.UserID)
		return err
	case models.ProductTypeEnterprise:
		return s.enterprises.GrantForStars(payload.UserID, payload.ProductID)
	case models.ProductTypeBoost:
		return s.boosts.GrantForStars(payload.UserID, payload.ProductID)
	case models.ProductTypeCase:
		return s.cases.GrantForStars(payload.UserID, payload.ProductID)
	default:
		return fmt.Errorf("%w: unknown product type %q", ErrBadRequest, payload.ProductType)
	}
}

// ProcessSuccessfulPayment is the single entry point used by the bot when
// a successful_payment update arrives: persist the charge, then fulfill.
func (s *PaymentService) ProcessSuccessfulPayment(payment *models.StarsPayment) error {
	if err := s.SavePayment(payment); err != nil {
		if errors.Is(err, ErrConflict) {
			log.Printf("Payment %s already processed, skipping fulfillment", payment.ID)
			return nil
		}
		return err
	}

	payload, err := ParsePayload(payment.InvoicePayload)
	if err != nil {
		return err
	}
	if payload.UserID == 0 {
		payload.UserID = payment.TgID
	}

	if err := s.Fulfill(payload); err != nil {
		return fmt.Errorf("payment %s recorded but fulfillment failed: %w", payment.ID, err)
	}

	log.Printf("Payment %s fulfilled: %s %d for user %d",
		payment.ID, payload.ProductType, payload.ProductID, payload.UserID)
	return nil
}

// FindPayment retrieves a payment by its charge id
func (s *PaymentService) FindPayment(chargeID string) (*models.StarsPayment, error) {
	var payment models.StarsPayment
	if err := s.db.Where("id = ?", chargeID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: payment %s", ErrNotFound, chargeID)
		}
		return nil, err
	}
	return &payment, nil
}

// RecordRefund stores a refunded payment event
func (s *PaymentService) RecordRefund(refund *models.StarsRefund) error {
	err := s.db.Create(refund).Error
	if err != nil {
		var existing models.StarsRefund
		if s.db.Where("id = ?", refund.ID).First(&existing).Error == nil {
			return fmt.Errorf("%w: refund %s already recorded", ErrConflict, refund.ID)
		}
		return fmt.Errorf("failed to save refund: %w", err)
	}
	return nil
}

// UserPayments returns a user's payment history, newest first
func (s *PaymentService) UserPayments(tgID int64, offset, limit int) ([]models.StarsPayment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var payments []models.StarsPayment
	if err := s.db.Where("tg_id = ?", tgID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
