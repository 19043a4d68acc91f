package auth // package auth holds the session token and password policy domain

import (
	"crypto/rand"   // secure random generation for token values
	"crypto/sha256" // SHA-256 fingerprints for stored tokens
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/iliyamo/instant-messaging/internal/model"
)

// Config carries the token policy limits. All values are validated
// once in NewDomain; an invalid configuration never reaches call time.
type Config struct {
	TokenSizeBytes   int           // byte length of generated token values
	TokenTTL         time.Duration // absolute lifetime measured from creation
	TokenRollingTTL  time.Duration // sliding lifetime measured from last use
	MaxTokensPerUser int           // per-user session quota
	BcryptCost       int           // bcrypt cost for password hashing
}

// Domain implements pure token and password policy: generation,
// structural validation, fingerprinting and expiration arithmetic.
// It performs no I/O beyond reading the system random source.
type Domain struct {
	cfg Config
}

// NewDomain validates the configuration and returns the domain.
// Violations fail immediately rather than at first use.
func NewDomain(cfg Config) (*Domain, error) {
	if cfg.TokenSizeBytes <= 0 {
		return nil, errors.New("auth: token size must be positive")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	if cfg.TokenRollingTTL <= 0 {
		return nil, errors.New("auth: token rolling ttl must be positive")
	}
	if cfg.MaxTokensPerUser < 1 {
		return nil, errors.New("auth: max tokens per user must be at least 1")
	}
	return &Domain{cfg: cfg}, nil
}

// MaxTokensPerUser returns the per-user session quota.
func (d *Domain) MaxTokensPerUser() int { return d.cfg.MaxTokensPerUser }

// GenerateTokenValue returns a new opaque token value: TokenSizeBytes
// of cryptographically secure random data, URL-safe base64 encoded.
func (d *Domain) GenerateTokenValue() (string, error) {
	buf := make([]byte, d.cfg.TokenSizeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CanBeToken is a structural check used to short-circuit lookups for
// values that cannot possibly be one of our tokens: it must decode as
// URL-safe base64 to exactly the configured byte length.
func (d *Domain) CanBeToken(value string) bool {
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	return err == nil && len(decoded) == d.cfg.TokenSizeBytes
}

// TokenFingerprint derives the value stored in place of the raw
// token: the SHA-256 hex digest. Deterministic and one-way, so equal
// tokens always map to the same row and the raw value is never kept.
func (d *Domain) TokenFingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// TokenExpiration computes the effective expiration instant:
// whichever of the absolute and rolling windows closes first.
func (d *Domain) TokenExpiration(tok model.Token) time.Time {
	absolute := tok.CreatedAt.Add(d.cfg.TokenTTL)
	rolling := tok.LastUsedAt.Add(d.cfg.TokenRollingTTL)
	if absolute.Before(rolling) {
		return absolute
	}
	return rolling
}

// IsTokenTimeValid reports whether the token is inside both windows
// at the given instant.
func (d *Domain) IsTokenTimeValid(now time.Time, tok model.Token) bool {
	return !tok.CreatedAt.After(now) &&
		now.Sub(tok.CreatedAt) <= d.cfg.TokenTTL &&
		now.Sub(tok.LastUsedAt) <= d.cfg.TokenRollingTTL
}
