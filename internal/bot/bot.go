package bot

import (
	"fmt"
	"log"
	"slices"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/redis/go-redis/v9"

	"tycoon-backend/internal/config"
	"tycoon-backend/internal/services"
)

// Bot wires the Telegram command surface to the game services. Updates
// arrive over a channel fed by the webhook endpoint.
type Bot struct {
	Instance *telego.Bot
	Updates  chan telego.Update

	Redis    *redis.Client
	Users    *services.UserService
	Payments *services.PaymentService

	cfg config.TelegramConfig

	handler  *th.BotHandler
	username string
}

// NewBot creates the bot and its update channel
func NewBot(cfg config.TelegramConfig, rdb *redis.Client, users *services.UserService, payments *services.PaymentService) (*Bot, error) {
	tgBot, err := telego.NewBot(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance: tgBot,
		Updates:  make(chan telego.Update, 128),
		Redis:    rdb,
		Users:    users,
		Payments: payments,
		cfg:      cfg,
	}, nil
}

// isAdmin reports whether a telegram id is in the configured admin list
func (b *Bot) isAdmin(tgID int64) bool {
	return slices.Contains(b.cfg.BotAdmins, tgID)
}

// Start registers handlers and blocks processing updates until Stop
func (b *Bot) Start() {
	handler, err := th.NewBotHandler(b.Instance, b.Updates)
	if err != nil {
		log.Printf("Failed to create bot handler: %v", err)
		return
	}
	b.handler = handler

	b.registerCommands(handler)
	b.registerPayments(handler)
	b.registerBroadcast(handler)

	handler.Start()
}

// Stop shuts down the handler loop
func (b *Bot) Stop() {
	if b.handler != nil {
		b.handler.Stop()
	}
}

// botUsername resolves and caches the bot's own username for deep links
func (b *Bot) botUsername(ctx *th.Context) string {
	if b.username != "" {
		return b.username
	}
	if info, err := b.Instance.GetMe(ctx.Context()); err == nil {
		b.username = info.Username
	}
	return b.username
}
