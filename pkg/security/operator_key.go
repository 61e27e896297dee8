package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrOperatorKeyDisabled signals no operator key hash is configured.
	ErrOperatorKeyDisabled = errors.New("operator key not configured")
	// ErrOperatorKeyMismatch signals the presented key does not match.
	ErrOperatorKeyMismatch = errors.New("operator key mismatch")
)

// HashOperatorKey produces a bcrypt hash suitable for the config value.
func HashOperatorKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("operator key is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyOperatorKey compares the presented key against the configured hash.
func VerifyOperatorKey(hash, presented string) error {
	if strings.TrimSpace(hash) == "" {
		return ErrOperatorKeyDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)); err != nil {
		return ErrOperatorKeyMismatch
	}
	return nil
}
