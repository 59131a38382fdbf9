package bot

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"tycoon-backend/internal/services"
)

// registerCommands wires the public and admin command surface
func (b *Bot) registerCommands(handler *th.BotHandler) {
	// /start [ref_id]
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		from := message.From

		var refTgID *int64
		if parts := strings.Split(message.Text, " "); len(parts) > 1 {
			arg := strings.TrimPrefix(parts[1], "ref_")
			if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
				if parsed == from.ID {
					_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
						tu.ID(message.Chat.ID),
						"You cannot invite yourself.",
					))
					return nil
				}
				refTgID = &parsed
			}
		}

		_, err := b.Users.Register(services.RegisterInput{
			TgID:      from.ID,
			ChatID:    message.Chat.ID,
			Username:  from.Username,
			FirstName: from.FirstName,
			LastName:  from.LastName,
			IsBot:     from.IsBot,
			IsPremium: from.IsPremium,
			RefTgID:   refTgID,
		})
		if err != nil {
			// Onboarding stays best-effort; the webapp login will retry it.
			log.Printf("Failed to register user %d: %v", from.ID, err)
		}

		keyboard := tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("Play").WithWebApp(&telego.WebAppInfo{URL: b.cfg.WebAppURL}),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("How to play").WithCallbackData("how_to_play"),
			),
		)

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			fmt.Sprintf("Hi, %s!\n\nBuild your enterprise empire: tap, earn, trade.", from.FirstName),
		).WithReplyMarkup(keyboard))
		return nil
	}, th.CommandEqual("start"))

	// /play
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		keyboard := tu.InlineKeyboard(
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton("Play").WithWebApp(&telego.WebAppInfo{URL: b.cfg.WebAppURL}),
			),
		)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			"Tap the button below and play",
		).WithReplyMarkup(keyboard))
		return nil
	}, th.CommandEqual("play"))

	// /reflink
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		username := b.botUsername(ctx)
		if username == "" {
			_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
				tu.ID(update.Message.Chat.ID),
				"Could not build your link, try again later.",
			))
			return nil
		}

		link := fmt.Sprintf("https://t.me/%s?start=%d", username, update.Message.From.ID)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			fmt.Sprintf("Your invite link: %s", link),
		))
		return nil
	}, th.CommandEqual("reflink"))

	// /id
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			fmt.Sprintf("Your ID: %d", update.Message.From.ID),
		))
		return nil
	}, th.CommandEqual("id"))

	// /support
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			b.cfg.SupportHandle,
		))
		return nil
	}, th.CommandEqual("support"))

	// /stat, admins only
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		if !b.isAdmin(update.Message.From.ID) {
			return nil
		}

		stats, err := b.Users.Stats()
		if err != nil {
			log.Printf("Failed to collect bot stats: %v", err)
			return nil
		}

		text := fmt.Sprintf(
			"User statistics:\n"+
				"Total: %d\n"+
				"Active: %d\n"+
				"Blocked: %d\n"+
				"Growth:\n"+
				"Last day: %d\n"+
				"Last week: %d\n"+
				"Last month: %d",
			stats.TotalUsers, stats.ActiveUsers, stats.BlockedUsers,
			stats.NewUsersLastDay, stats.NewUsersLastWeek, stats.NewUsersLastMonth,
		)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(update.Message.Chat.ID), text))
		return nil
	}, th.CommandEqual("stat"))

	// "How to play" callback from the /start keyboard
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))

		text := "Tap to earn GDP, buy enterprises to grow capacity, " +
			"invite friends for referral rewards and trade enterprises on the market."
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text))
		return nil
	}, th.CallbackDataEqual("how_to_play"))
}
