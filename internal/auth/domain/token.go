package domain

import "time"

// TokenPair is what successful login, verification, and refresh return.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// RefreshToken models a stored refresh-token grant. The token string itself
// is never persisted; TokenHash is its SHA-256 fingerprint. A row is deleted
// the instant it is redeemed, so any later presentation of the same token is
// a reuse event.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
