package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tycoon-backend/internal/models"
)

func newTestPaymentService(db *gorm.DB) *PaymentService {
	users := newTestUserService(db)
	return NewPaymentService(db, users, NewEnterpriseService(db), NewBoostService(db), NewCaseService(db))
}

func paymentFor(t *testing.T, tgID int64, productType string, productID uint) *models.StarsPayment {
	payload, err := json.Marshal(models.PaymentPayload{
		UserID:      tgID,
		ProductType: productType,
		ProductID:   productID,
	})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return &models.StarsPayment{
		ID:             "charge-" + productType,
		Currency:       "XTR",
		TotalAmount:    10,
		InvoicePayload: string(payload),
		TgID:           tgID,
	}
}

func TestFulfillSlot(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPaymentService(db)

	user := createTestUser(t, db, 100, nil)
	db.Model(&models.User{}).Where("tg_id = ?", user.TgID).Update("enterprise_slots", 3)

	if err := service.ProcessSuccessfulPayment(paymentFor(t, user.TgID, models.ProductTypeSlot, 0)); err != nil {
		t.Fatalf("ProcessSuccessfulPayment failed: %v", err)
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.EnterpriseSlots != 4 {
		t.Errorf("expected 4 slots, got %d", stored.EnterpriseSlots)
	}
}

func TestFulfillEnterprise(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPaymentService(db)

	enterprise := models.Enterprise{Name: "Cafe", Capacity: 25, StarsPrice: 25}
	if err := db.Create(&enterprise).Error; err != nil {
		t.Fatalf("failed to seed enterprise: %v", err)
	}

	user := createTestUser(t, db, 100, nil)
	db.Model(&models.User{}).Where("tg_id = ?", user.TgID).Update("enterprise_slots", 3)

	if err := service.ProcessSuccessfulPayment(paymentFor(t, user.TgID, models.ProductTypeEnterprise, enterprise.ID)); err != nil {
		t.Fatalf("ProcessSuccessfulPayment failed: %v", err)
	}

	var owned int64
	db.Model(&models.UserEnterprise{}).Where("tg_id = ?", user.TgID).Count(&owned)
	if owned != 1 {
		t.Errorf("enterprise not granted")
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.TotalCapacity != 25 {
		t.Errorf("capacity not rolled up, got %d", stored.TotalCapacity)
	}
}

func TestFulfillBoost(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPaymentService(db)

	boost := models.Boost{Name: "x2", Value: decimal.NewFromFloat(2.0), DurationHours: 24, StarsPrice: 35}
	if err := db.Create(&boost).Error; err != nil {
		t.Fatalf("failed to seed boost: %v", err)
	}

	user := createTestUser(t, db, 100, nil)

	if err := service.ProcessSuccessfulPayment(paymentFor(t, user.TgID, models.ProductTypeBoost, boost.ID)); err != nil {
		t.Fatalf("ProcessSuccessfulPayment failed: %v", err)
	}

	var active models.UserBoost
	if err := db.Where("tg_id = ?", user.TgID).First(&active).Error; err != nil {
		t.Fatalf("boost not attached: %v", err)
	}
	if !active.ExpiresAt.After(time.Now()) {
		t.Errorf("boost expired on arrival")
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if !stored.TotalBoostValue.Equal(decimal.NewFromFloat(2.0)) {
		t.Errorf("total boost value not updated: %s", stored.TotalBoostValue)
	}
}

func TestFulfillCase(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPaymentService(db)

	box := models.Case{Name: "Bronze", MinAmount: 100, MaxAmount: 100, StarsPrice: 15}
	if err := db.Create(&box).Error; err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}

	user := createTestUser(t, db, 100, nil)

	if err := service.ProcessSuccessfulPayment(paymentFor(t, user.TgID, models.ProductTypeCase, box.ID)); err != nil {
		t.Fatalf("ProcessSuccessfulPayment failed: %v", err)
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if !stored.CanOpenCase {
		t.Fatalf("case not granted")
	}

	cases := NewCaseService(db)
	amount, err := cases.Open(user.TgID, box.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if amount != 100 {
		t.Errorf("expected draw of 100, got %d", amount)
	}

	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.GameBalance != 100 {
		t.Errorf("draw not credited, balance %d", stored.GameBalance)
	}
	if stored.CanOpenCase {
		t.Errorf("case flag not cleared after opening")
	}

	if _, err := cases.Open(user.TgID, box.ID); !errors.Is(err, ErrTaskNotCompleted) {
		t.Errorf("expected ErrTaskNotCompleted without a held case, got %v", err)
	}
}

func TestFulfillUnknownProductType(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPaymentService(db)

	user := createTestUser(t, db, 100, nil)

	payment := paymentFor(t, user.TgID, "mystery", 1)
	err := service.ProcessSuccessfulPayment(payment)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for unknown product type, got %v", err)
	}

	// The payment itself is still recorded even though nothing was granted.
	var stored models.StarsPayment
	if err := db.Where("id = ?", payment.ID).First(&stored).Error; err != nil {
		t.Errorf("payment row missing after failed fulfillment: %v", err)
	}
}

func TestDuplicateChargeIsSkipped(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPaymentService(db)

	user := createTestUser(t, db, 100, nil)
	db.Model(&models.User{}).Where("tg_id = ?", user.TgID).Update("enterprise_slots", 3)

	payment := paymentFor(t, user.TgID, models.ProductTypeSlot, 0)
	if err := service.ProcessSuccessfulPayment(payment); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}

	// Redelivery of the same charge must not grant twice.
	replay := *payment
	if err := service.ProcessSuccessfulPayment(&replay); err != nil {
		t.Fatalf("redelivery returned an error: %v", err)
	}

	var stored models.User
	db.Where("tg_id = ?", user.TgID).First(&stored)
	if stored.EnterpriseSlots != 4 {
		t.Errorf("duplicate charge granted again, slots %d", stored.EnterpriseSlots)
	}
}
