package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

const (
	// broadcastStateTTL bounds how long an admin's pending /new_post
	// prompt survives without a follow-up message.
	broadcastStateTTL = 30 * time.Minute

	// broadcastPace keeps sends under Telegram's rate limit,
	// roughly five messages per second.
	broadcastPace = 200 * time.Millisecond

	broadcastBatchLimit = 500
)

func broadcastStateKey(tgID int64) string {
	return fmt.Sprintf("broadcast:pending:%d", tgID)
}

// registerBroadcast wires the admin /new_post + /cancel flow. The pending
// state lives in redis, keyed by admin id, so the flow survives restarts.
func (b *Bot) registerBroadcast(handler *th.BotHandler) {
	// /new_post
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		tgID := update.Message.From.ID
		if !b.isAdmin(tgID) {
			return nil
		}

		if err := b.Redis.Set(ctx.Context(), broadcastStateKey(tgID), "1", broadcastStateTTL).Err(); err != nil {
			log.Printf("Failed to set broadcast state for %d: %v", tgID, err)
			return nil
		}

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			"Enter the post text:",
		))
		return nil
	}, th.CommandEqual("new_post"))

	// /cancel
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		tgID := update.Message.From.ID
		if !b.isAdmin(tgID) {
			return nil
		}

		removed, err := b.Redis.Del(ctx.Context(), broadcastStateKey(tgID)).Result()
		if err != nil {
			log.Printf("Failed to clear broadcast state for %d: %v", tgID, err)
			return nil
		}
		if removed == 0 {
			return nil
		}

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(update.Message.Chat.ID),
			"Cancelled.",
		))
		return nil
	}, th.CommandEqual("cancel"))

	// Next text message from an admin with pending state is the post body
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		tgID := message.From.ID

		if err := b.Redis.Del(ctx.Context(), broadcastStateKey(tgID)).Err(); err != nil {
			log.Printf("Failed to clear broadcast state for %d: %v", tgID, err)
		}

		go b.broadcast(message.Text, message.ReplyMarkup)

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(
			tu.ID(message.Chat.ID),
			"Broadcast started.",
		))
		return nil
	}, b.pendingBroadcast)
}

// pendingBroadcast matches a text message from an admin who has an open
// /new_post prompt.
func (b *Bot) pendingBroadcast(ctx context.Context, update telego.Update) bool {
	if update.Message == nil || update.Message.Text == "" {
		return false
	}
	tgID := update.Message.From.ID
	if !b.isAdmin(tgID) {
		return false
	}

	exists, err := b.Redis.Exists(ctx, broadcastStateKey(tgID)).Result()
	if err != nil {
		log.Printf("Failed to read broadcast state for %d: %v", tgID, err)
		return false
	}
	return exists == 1
}

// broadcast delivers the post to every reachable user with a fixed pause
// between sends. Failures are logged and the loop moves on.
func (b *Bot) broadcast(text string, markup *telego.InlineKeyboardMarkup) {
	users, err := b.Users.Chatable(broadcastBatchLimit)
	if err != nil {
		log.Printf("Broadcast aborted, failed to load users: %v", err)
		return
	}

	ctx := context.Background()
	sent := 0
	for _, user := range users {
		msg := tu.Message(tu.ID(user.TgChatID), text)
		if markup != nil {
			msg = msg.WithReplyMarkup(markup)
		}

		if _, err := b.Instance.SendMessage(ctx, msg); err != nil {
			log.Printf("Error sending message to %d: %v", user.TgChatID, err)
		} else {
			sent++
		}
		time.Sleep(broadcastPace)
	}

	log.Printf("Broadcast finished: %d/%d delivered", sent, len(users))
}
