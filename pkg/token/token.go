// Package token provides cryptographically secure customer access tokens
// for the appointment booking service.
//
// A customer access token is a bearer capability: anyone holding it can read
// and update exactly one appointment instance, with no further
// authentication. Tokens are therefore generated with crypto/rand at 256
// bits of entropy and encoded base64-URL without padding so they embed
// cleanly in booking URLs (".../booking/<token>").
//
// Unlike session or API tokens, customer access tokens are stored in plain
// form: the token doubles as the indexed lookup key and must round-trip
// into the customer URL. Hash produces an HMAC-SHA256 digest under a shared
// secret so tooling (the admin inspect-token utility) can reference a token
// in logs and tickets without reproducing it; Validate is its constant-time
// counterpart for checking a token against such a digest.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// MinTokenLength is the minimum accepted token length. Anything shorter
	// cannot have come from Generate and is rejected before any lookup.
	// 43 characters of base64-URL is 256 bits of entropy.
	MinTokenLength = 43

	// DefaultTokenBytes is the number of random bytes behind each token.
	DefaultTokenBytes = 32
)

// Generate creates a customer access token: DefaultTokenBytes of
// crypto/rand output, base64-URL-encoded without padding (43 characters).
func Generate() (string, error) {
	return GenerateWithLength(DefaultTokenBytes)
}

// GenerateWithLength creates a token from numBytes of random data. numBytes
// below DefaultTokenBytes is rejected; a weaker capability token is never
// acceptable.
func GenerateWithLength(numBytes int) (string, error) {
	if numBytes < DefaultTokenBytes {
		return "", fmt.Errorf("token length must be at least %d bytes", DefaultTokenBytes)
	}

	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tok := base64.RawURLEncoding.EncodeToString(b)
	if len(tok) < MinTokenLength {
		return "", fmt.Errorf("generated token too short: got %d, need %d", len(tok), MinTokenLength)
	}
	return tok, nil
}

// Hash produces the hex-encoded HMAC-SHA256 of a token under the given
// secret. Tooling uses the digest to reference a token without logging it.
func Hash(token, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Validate compares a provided token against a stored hash in constant
// time, preventing timing attacks from narrowing down valid token values.
func Validate(provided, secret, storedHash string) bool {
	providedHash := Hash(provided, secret)
	return hmac.Equal([]byte(providedHash), []byte(storedHash))
}

// ValidateLength rejects tokens that are too short to be genuine. This is
// a cheap pre-check performed before any database lookup.
func ValidateLength(token string) error {
	if len(token) < MinTokenLength {
		return fmt.Errorf("token too short: got %d characters, need at least %d", len(token), MinTokenLength)
	}
	return nil
}
