package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordFormat(t *testing.T) {
	h, err := HashPassword("correct horse", MinPBKDF2Iterations)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	parts := strings.Split(h, "$")
	if len(parts) != 4 {
		t.Fatalf("expected 4 segments, got %d: %q", len(parts), h)
	}
	if parts[0] != "pbkdf2_sha256" {
		t.Errorf("algorithm = %q", parts[0])
	}
	if parts[1] != "260000" {
		t.Errorf("iterations = %q", parts[1])
	}
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	a, err := HashPassword("same password", MinPBKDF2Iterations)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("same password", MinPBKDF2Iterations)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password were identical")
	}
	if !VerifyPassword(a, "same password") || !VerifyPassword(b, "same password") {
		t.Fatal("both hashes should verify against the original password")
	}
}

func TestHashPasswordRaisesLowIterations(t *testing.T) {
	h, err := HashPassword("pw", 1)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(h, "pbkdf2_sha256$260000$") {
		t.Fatalf("low iteration count was not raised to the floor: %q", h)
	}
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPassword("s3cret!", MinPBKDF2Iterations)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(h, "s3cret!") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(h, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestVerifyPasswordEmptyHashSegment(t *testing.T) {
	// Both digests would be zero-length here, and a constant-time compare
	// of two empty slices succeeds; such a record must never verify.
	if VerifyPassword("pbkdf2_sha256$260000$salt$", "any password at all") {
		t.Fatal("record with empty hash segment verified true")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	for _, stored := range []string{
		"",
		"bcrypt$12$abc$def",
		"pbkdf2_sha256$notanumber$salt$hash",
		"pbkdf2_sha256$260000$salt$!!!not-base64!!!",
		"pbkdf2_sha256$260000$salt",
		"pbkdf2_sha256$260000$salt$",
		"pbkdf2_sha256$0$salt$aGFzaA==",
		"pbkdf2_sha256$99999999$salt$aGFzaA==",
	} {
		if VerifyPassword(stored, "anything") {
			t.Errorf("malformed record %q verified true", stored)
		}
	}
}
