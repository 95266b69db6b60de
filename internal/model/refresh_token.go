package model

import "time"

// RefreshToken is a long-lived credential for minting new access
// tokens.  Only the SHA-256 hash of the raw token is stored; tokens are
// rotated (old row revoked, new row inserted) on every refresh.
type RefreshToken struct {
	ID          string    // refresh_tokens.id
	PassengerID string    // refresh_tokens.passenger_id
	TokenHash   string    // refresh_tokens.token_hash (sha256 hex)
	ExpiresAt   time.Time // refresh_tokens.expires_at
	Revoked     bool      // refresh_tokens.revoked
	CreatedAt   time.Time // refresh_tokens.created_at
}

// IsUsable reports whether the token can still mint access tokens.
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
