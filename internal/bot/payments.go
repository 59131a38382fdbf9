package bot

import (
	"context"
	"log"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"tycoon-backend/internal/models"
)

// registerPayments wires Telegram Stars payment updates: the pre-checkout
// confirmation step, successful payments and refund notices.
func (b *Bot) registerPayments(handler *th.BotHandler) {
	// Telegram requires an answer within 10 seconds or the payment fails.
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		query := update.PreCheckoutQuery
		if err := ctx.Bot().AnswerPreCheckoutQuery(ctx.Context(), &telego.AnswerPreCheckoutQueryParams{
			PreCheckoutQueryID: query.ID,
			Ok:                 true,
		}); err != nil {
			log.Printf("Failed to answer pre-checkout %s: %v", query.ID, err)
		}
		return nil
	}, func(ctx context.Context, update telego.Update) bool {
		return update.PreCheckoutQuery != nil
	})

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		paid := message.SuccessfulPayment

		payment := &models.StarsPayment{
			ID:             paid.TelegramPaymentChargeID,
			Currency:       paid.Currency,
			TotalAmount:    paid.TotalAmount,
			InvoicePayload: paid.InvoicePayload,
			TgID:           message.From.ID,
		}
		if paid.ProviderPaymentChargeID != "" {
			provider := paid.ProviderPaymentChargeID
			payment.ProviderPaymentChargeID = &provider
		}
		if paid.ShippingOptionID != "" {
			shipping := paid.ShippingOptionID
			payment.ShippingOptionID = &shipping
		}

		if err := b.Payments.ProcessSuccessfulPayment(payment); err != nil {
			log.Printf("Failed to process payment %s: %v", payment.ID, err)
			_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
				tu.ID(message.Chat.ID),
				"Payment received, but something went wrong with your purchase. Contact support.",
			))
			return nil
		}

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			"Payment received, your purchase is ready!",
		))
		return nil
	}, func(ctx context.Context, update telego.Update) bool {
		return update.Message != nil && update.Message.SuccessfulPayment != nil
	})

	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		refunded := message.RefundedPayment

		refund := &models.StarsRefund{
			ID:          refunded.TelegramPaymentChargeID,
			Currency:    refunded.Currency,
			TotalAmount: refunded.TotalAmount,
			TgID:        message.From.ID,
		}
		if err := b.Payments.RecordRefund(refund); err != nil {
			log.Printf("Failed to record refund %s: %v", refund.ID, err)
		}
		return nil
	}, func(ctx context.Context, update telego.Update) bool {
		return update.Message != nil && update.Message.RefundedPayment != nil
	})
}
