package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"

	"tycoon-backend/internal/auth"
	"tycoon-backend/internal/models"
	"tycoon-backend/internal/services"
)

type PaymentHandler struct {
	bot            *telego.Bot
	paymentService *services.PaymentService
	catalog        catalogLookup
}

// catalogLookup resolves a product's stars price and display name
type catalogLookup struct {
	enterprises *services.EnterpriseService
	boosts      *services.BoostService
	cases       *services.CaseService
	slotPrice   int
}

func NewPaymentHandler(
	bot *telego.Bot,
	paymentService *services.PaymentService,
	enterprises *services.EnterpriseService,
	boosts *services.BoostService,
	cases *services.CaseService,
) *PaymentHandler {
	return &PaymentHandler{
		bot:            bot,
		paymentService: paymentService,
		catalog: catalogLookup{
			enterprises: enterprises,
			boosts:      boosts,
			cases:       cases,
			slotPrice:   50,
		},
	}
}

// starsPrice resolves the XTR amount and label for a product
func (l catalogLookup) starsPrice(productType string, productID uint) (int, string, error) {
	switch productType {
	case models.ProductTypeSlot:
		return l.slotPrice, "Enterprise slot", nil
	case models.ProductTypeEnterprise:
		catalog, err := l.enterprises.Catalog()
		if err != nil {
			return 0, "", err
		}
		for _, item := range catalog {
			if item.ID == productID {
				return item.StarsPrice, item.Name, nil
			}
		}
	case models.ProductTypeBoost:
		catalog, err := l.boosts.Catalog()
		if err != nil {
			return 0, "", err
		}
		for _, item := range catalog {
			if item.ID == productID {
				return item.StarsPrice, item.Name, nil
			}
		}
	case models.ProductTypeCase:
		catalog, err := l.cases.Catalog()
		if err != nil {
			return 0, "", err
		}
		for _, item := range catalog {
			if item.ID == productID {
				return item.StarsPrice, item.Name, nil
			}
		}
	}
	return 0, "", services.ErrNotFound
}

// GetInvoiceLink builds a Telegram Stars payment link for a product
func (h *PaymentHandler) GetInvoiceLink(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProductType string `json:"product_type" binding:"required"`
		ProductID   uint   `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, label, err := h.catalog.starsPrice(req.ProductType, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	if amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product is not sold for stars"})
		return
	}

	payload, err := json.Marshal(models.PaymentPayload{
		UserID:      tgID,
		ProductType: req.ProductType,
		ProductID:   req.ProductID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build payload"})
		return
	}

	link, err := h.bot.CreateInvoiceLink(c.Request.Context(), &telego.CreateInvoiceLinkParams{
		Title:       label,
		Description: label,
		Payload:     string(payload),
		Currency:    "XTR",
		Prices: []telego.LabeledPrice{
			{Label: "XTR", Amount: amount},
		},
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to create invoice link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

// MakeRefund refunds a stars payment back to its payer. Superuser only.
func (h *PaymentHandler) MakeRefund(c *gin.Context) {
	var req struct {
		TransactionID string `json:"transaction_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.FindPayment(req.TransactionID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.bot.RefundStarPayment(c.Request.Context(), &telego.RefundStarPaymentParams{
		UserID:                  payment.TgID,
		TelegramPaymentChargeID: req.TransactionID,
	}); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "refund failed"})
		return
	}

	if err := h.paymentService.RecordRefund(&models.StarsRefund{
		ID:          req.TransactionID,
		Currency:    payment.Currency,
		TotalAmount: payment.TotalAmount,
		TgID:        payment.TgID,
	}); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "refund issued"})
}

// MyPayments returns the caller's stars payment history
func (h *PaymentHandler) MyPayments(c *gin.Context) {
	tgID, ok := auth.GetTgID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	offset, limit := pagination(c)
	payments, err := h.paymentService.UserPayments(tgID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
