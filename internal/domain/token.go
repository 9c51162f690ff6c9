package domain

import "time"

// RefreshToken is the server-side record backing a long-lived credential.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be redeemed.
func (t RefreshToken) Expired(now time.Time) bool {
	return t.Revoked || !now.Before(t.ExpiresAt)
}
