package model

import "time"

// Token models an entry in the `tokens` table. Each session token
// belongs to a user. The raw token value is not stored; only its
// SHA-256 fingerprint, so a database leak cannot be replayed.
//
// Fields:
//  Fingerprint – SHA-256 hex digest of the raw token value.
//  UserID      – owner of the token.
//  CreatedAt   – creation instant; anchors the absolute TTL.
//  LastUsedAt  – last successful use; anchors the rolling TTL.
type Token struct {
	Fingerprint string    // tokens.fingerprint
	UserID      uint64    // tokens.user_id
	CreatedAt   time.Time // tokens.created_at
	LastUsedAt  time.Time // tokens.last_used_at
}

// TokenInfo is what a successful login hands back to the client:
// the raw token value (shown exactly once) and when it expires.
type TokenInfo struct {
	Value     string
	ExpiresAt time.Time
}
