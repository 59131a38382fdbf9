package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"
)

// secretTokenHeader is the header Telegram sends the webhook secret in
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler accepts Telegram update payloads and feeds the bot's
// update channel. Bad requests get a soft {status, message} body with
// HTTP 200, so Telegram does not retry-storm the endpoint.
type WebhookHandler struct {
	secret  string
	updates chan<- telego.Update
}

func NewWebhookHandler(secret string, updates chan<- telego.Update) *WebhookHandler {
	return &WebhookHandler{
		secret:  secret,
		updates: updates,
	}
}

// Handle receives one update from Telegram
func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" && c.GetHeader(secretTokenHeader) != h.secret {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "bad secret token"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "unreadable body"})
		return
	}

	var update telego.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Printf("Webhook: malformed update: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "malformed update"})
		return
	}

	select {
	case h.updates <- update:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "accepted"})
	default:
		// Queue full. Telegram will redeliver the update.
		log.Printf("Webhook: update queue full, dropping update %d", update.UpdateID)
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "queue full"})
	}
}
