package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/oklog/ulid/v2"
)

// Token format: mtr_{ulid}_{secret}
// Example: mtr_01HV3M9PZ8Y0Q4T6W2E8R1N5K7_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// The ULID part orders tokens by issue time and gives each one a stable
// identifier for logging; the secret part is the actual credential.
// Sessions are stored server-side keyed by CacheKey, so tokens carry no
// claims and revocation is a cache delete.
const (
	tokenPrefix    = "mtr_"
	tokenSecretLen = 32 // hex encoded 16 bytes
)

var (
	// ErrInvalidTokenFormat indicates the bearer token is malformed.
	ErrInvalidTokenFormat = errors.New("invalid token format")
	// tokenFormatRegex validates the token shape before any lookup.
	tokenFormatRegex = regexp.MustCompile(`^mtr_([0-9A-HJKMNP-TV-Z]{26})_([a-f0-9]{32})$`)
)

// GeneratedToken contains the parts of a newly issued session token.
type GeneratedToken struct {
	Plaintext string // full token, returned to the caller once
	ID        string // ULID portion, safe to log
}

// GenerateToken creates a new opaque session token.
func GenerateToken() (*GeneratedToken, error) {
	id := ulid.Make().String()

	secretBytes := make([]byte, tokenSecretLen/2)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	return &GeneratedToken{
		Plaintext: tokenPrefix + id + "_" + secret,
		ID:        id,
	}, nil
}

// ParseToken validates the token shape and returns its ULID portion.
// It performs no lookup; a well-formed token may still be expired or
// unknown.
func ParseToken(token string) (string, error) {
	m := tokenFormatRegex.FindStringSubmatch(token)
	if m == nil {
		return "", ErrInvalidTokenFormat
	}
	return m[1], nil
}

// CacheKey derives the session-store key for a token. The raw token
// never reaches Redis; only its digest does.
func CacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
