package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// prehash folds a password of any length into 44 bytes so bcrypt's 72-byte
// input limit never truncates or rejects it.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword returns a bcrypt digest of the SHA-256 of the plaintext password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword validates a password against a stored bcrypt digest.
// The comparison runs in constant time with respect to the digest.
func CheckPassword(password, stored string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), prehash(password)) == nil
}

// NewSessionToken returns an unpredictable opaque session token (UUIDv4, 122 random bits).
func NewSessionToken() string {
	return uuid.NewString()
}
