package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WebAppUser is the user object embedded in Telegram WebApp init data
type WebAppUser struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	IsPremium bool   `json:"is_premium"`
}

// InitData is the verified payload of a Telegram WebApp login
type InitData struct {
	User       *WebAppUser
	AuthDate   int64
	StartParam string
	QueryID    string
}

// initDataMaxAge bounds how old a signed init-data payload may be before
// it is rejected as a replay.
const initDataMaxAge = 24 * time.Hour

// VerifyInitData checks the Telegram WebApp init-data signature against
// the bot token and returns the parsed payload.
//
// The data-check string is every key=value pair except hash, sorted and
// joined with newlines; the signing key is HMAC-SHA256 of the bot token
// keyed with the literal "WebAppData".
func VerifyInitData(botToken, initData string) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("malformed init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("init data has no hash")
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secretMac.Sum(nil))
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, fmt.Errorf("init data signature mismatch")
	}

	data := &InitData{
		StartParam: values.Get("start_param"),
		QueryID:    values.Get("query_id"),
	}

	if raw := values.Get("auth_date"); raw != "" {
		authDate, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid auth_date: %w", err)
		}
		if time.Since(time.Unix(authDate, 0)) > initDataMaxAge {
			return nil, fmt.Errorf("init data expired")
		}
		data.AuthDate = authDate
	}

	if raw := values.Get("user"); raw != "" {
		var user WebAppUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("invalid user payload: %w", err)
		}
		data.User = &user
	}

	return data, nil
}

// SignInitData builds a signed init-data query string. Used by tests and
// local tooling; production payloads come from Telegram.
func SignInitData(botToken string, values url.Values) string {
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secretMac.Sum(nil))
	mac.Write([]byte(dataCheckString))

	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}
