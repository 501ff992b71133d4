package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserJSONNeverExposesHash(t *testing.T) {
	u := User{ID: "u1", Email: "user@example.com", PasswordHash: "$2a$10$hash", CreatedAt: time.Now().UTC()}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(raw), "hash") || strings.Contains(string(raw), "$2a$") {
		t.Fatalf("password hash leaked: %s", raw)
	}

	raw, err = json.Marshal(u.Sanitize())
	if err != nil {
		t.Fatalf("marshal sanitized: %v", err)
	}
	if string(raw) != `{"id":"u1","email":"user@example.com"}` {
		t.Fatalf("unexpected sanitized shape: %s", raw)
	}
}
