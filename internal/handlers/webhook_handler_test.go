package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"
)

func postWebhook(t *testing.T, handler *WebhookHandler, secret, body string) (int, map[string]string) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhook/telegram", handler.Handle)

	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(secretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return rec.Code, payload
}

func TestWebhookAcceptsUpdate(t *testing.T) {
	updates := make(chan telego.Update, 1)
	handler := NewWebhookHandler("hunter2", updates)

	code, payload := postWebhook(t, handler, "hunter2", `{"update_id":7}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected ok status, got %+v", payload)
	}

	select {
	case update := <-updates:
		if update.UpdateID != 7 {
			t.Errorf("expected update 7, got %d", update.UpdateID)
		}
	default:
		t.Fatalf("update never reached the channel")
	}
}

func TestWebhookRejectsBadSecretSoftly(t *testing.T) {
	updates := make(chan telego.Update, 1)
	handler := NewWebhookHandler("hunter2", updates)

	code, payload := postWebhook(t, handler, "wrong", `{"update_id":7}`)
	if code != http.StatusOK {
		t.Fatalf("expected soft 200, got %d", code)
	}
	if payload["status"] != "error" {
		t.Fatalf("expected error status, got %+v", payload)
	}
	if len(updates) != 0 {
		t.Fatalf("update with bad secret reached the channel")
	}
}

func TestWebhookRejectsMalformedJSONSoftly(t *testing.T) {
	updates := make(chan telego.Update, 1)
	handler := NewWebhookHandler("", updates)

	code, payload := postWebhook(t, handler, "", `{not json`)
	if code != http.StatusOK {
		t.Fatalf("expected soft 200, got %d", code)
	}
	if payload["status"] != "error" {
		t.Fatalf("expected error status, got %+v", payload)
	}
}

func TestWebhookFullQueueIsSoftError(t *testing.T) {
	updates := make(chan telego.Update) // unbuffered, nobody reading
	handler := NewWebhookHandler("", updates)

	code, payload := postWebhook(t, handler, "", `{"update_id":8}`)
	if code != http.StatusOK {
		t.Fatalf("expected soft 200, got %d", code)
	}
	if payload["message"] != "queue full" {
		t.Fatalf("expected queue full message, got %+v", payload)
	}
}
