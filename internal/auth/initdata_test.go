package auth

import (
	"fmt"
	"net/url"
	"strconv"
	"testing"
	"time"
)

const testBotToken = "12345:TEST-TOKEN"

func signedInitData(t *testing.T, userID int64, authDate time.Time, startParam string) string {
	values := url.Values{}
	values.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"Alice","username":"alice"}`, userID))
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	if startParam != "" {
		values.Set("start_param", startParam)
	}
	return SignInitData(testBotToken, values)
}

func TestVerifyInitDataRoundTrip(t *testing.T) {
	raw := signedInitData(t, 42, time.Now(), "100500")

	data, err := VerifyInitData(testBotToken, raw)
	if err != nil {
		t.Fatalf("VerifyInitData failed: %v", err)
	}
	if data.User == nil || data.User.ID != 42 {
		t.Fatalf("user not parsed: %+v", data.User)
	}
	if data.User.Username != "alice" {
		t.Errorf("expected username alice, got %q", data.User.Username)
	}
	if data.StartParam != "100500" {
		t.Errorf("expected start_param 100500, got %q", data.StartParam)
	}
}

func TestVerifyInitDataRejectsTampering(t *testing.T) {
	raw := signedInitData(t, 42, time.Now(), "")

	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("failed to parse signed data: %v", err)
	}
	values.Set("user", `{"id":43,"first_name":"Mallory"}`)

	if _, err := VerifyInitData(testBotToken, values.Encode()); err == nil {
		t.Fatalf("tampered payload accepted")
	}
}

func TestVerifyInitDataRejectsWrongToken(t *testing.T) {
	raw := signedInitData(t, 42, time.Now(), "")

	if _, err := VerifyInitData("99999:OTHER-TOKEN", raw); err == nil {
		t.Fatalf("payload signed with another token accepted")
	}
}

func TestVerifyInitDataRejectsExpired(t *testing.T) {
	raw := signedInitData(t, 42, time.Now().Add(-25*time.Hour), "")

	if _, err := VerifyInitData(testBotToken, raw); err == nil {
		t.Fatalf("stale payload accepted")
	}
}

func TestVerifyInitDataRequiresHash(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"id":42,"first_name":"Alice"}`)

	if _, err := VerifyInitData(testBotToken, values.Encode()); err == nil {
		t.Fatalf("payload without hash accepted")
	}
}
