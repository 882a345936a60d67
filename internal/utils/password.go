package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Algorithm names the only hashing scheme currently written. Verify
// still reads the algorithm out of each stored record, so a future scheme
// can coexist with legacy hashes.
const pbkdf2Algorithm = "pbkdf2_sha256"

// MinPBKDF2Iterations is the floor for the configured work factor.
const MinPBKDF2Iterations = 260000

// MaxPBKDF2Iterations bounds the work factor read back out of a stored
// record, so a crafted password_hash value cannot pin a CPU during verify.
const MaxPBKDF2Iterations = 10_000_000

const saltBytes = 16
const keyBytes = 32

// HashPassword derives a salted PBKDF2-HMAC-SHA256 hash of the password and
// returns it in the self-describing form
// pbkdf2_sha256$<iterations>$<salt-b64>$<hash-b64>. A fresh random salt is
// drawn on every call, so hashing the same password twice yields different
// records. Iteration counts below MinPBKDF2Iterations are raised to it.
func HashPassword(password string, iterations int) (string, error) {
	if iterations < MinPBKDF2Iterations {
		iterations = MinPBKDF2Iterations
	}
	if iterations > MaxPBKDF2Iterations {
		iterations = MaxPBKDF2Iterations
	}
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	salt := base64.StdEncoding.EncodeToString(raw)
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyBytes, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		pbkdf2Algorithm, iterations, salt, base64.StdEncoding.EncodeToString(key)), nil
}

// VerifyPassword checks a plaintext password against a stored hash record.
// It recomputes the digest using the algorithm, iteration count and salt
// embedded in the record and compares in constant time. Any malformed
// record verifies false rather than returning an error.
func VerifyPassword(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != pbkdf2Algorithm {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 || iterations > MaxPBKDF2Iterations {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		// An empty hash segment would make both digests zero-length and
		// the constant-time compare trivially succeed.
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(parts[2]), iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
