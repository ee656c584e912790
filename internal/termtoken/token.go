// Package termtoken mints and checks the short-lived tokens that admit a
// browser to an instance's terminal. The forward-auth sidecar holds the
// same shared secret and TTL that are written into the tunnel manifest.
//
// A token is "<unix-expiry>.<hex HMAC-SHA256(secret, subject "." expiry)>".
package termtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalid indicates a malformed token or a signature mismatch.
	ErrInvalid = errors.New("invalid terminal token")

	// ErrExpired indicates a well-formed token past its expiry.
	ErrExpired = errors.New("terminal token expired")
)

// Generate returns a token for subject valid for ttl from now.
func Generate(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("termtoken: secret is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("termtoken: ttl must be positive, got %s", ttl)
	}
	expiry := strconv.FormatInt(now.Add(ttl).Unix(), 10)
	return expiry + "." + sign(secret, subject, expiry), nil
}

// Validate checks token against secret and subject at time now.
func Validate(secret, subject, token string, now time.Time) error {
	expiry, sig, ok := strings.Cut(token, ".")
	if !ok || expiry == "" || sig == "" {
		return ErrInvalid
	}
	exp, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return ErrInvalid
	}
	if !hmac.Equal([]byte(sig), []byte(sign(secret, subject, expiry))) {
		return ErrInvalid
	}
	if now.Unix() >= exp {
		return ErrExpired
	}
	return nil
}

func sign(secret, subject, expiry string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(subject + "." + expiry))
	return hex.EncodeToString(mac.Sum(nil))
}
