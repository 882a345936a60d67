package utils

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("test-secret", "alice", 15)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token string")
	}
	if remaining := time.Until(tok.Exp); remaining < 14*time.Minute {
		t.Errorf("expiry too soon: %v", remaining)
	}

	sub, err := ParseAccessToken("test-secret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "alice" {
		t.Errorf("subject = %q, want alice", sub)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret-a", "alice", 15)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := ParseAccessToken("secret-b", tok.Token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("test-secret", "alice", -5)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if _, err := ParseAccessToken("test-secret", tok.Token); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestParseAccessTokenGarbage(t *testing.T) {
	if _, err := ParseAccessToken("test-secret", "not.a.jwt"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}
