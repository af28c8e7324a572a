package salla

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// RemoteCredential
// ---------------------------------------------------------------------------

// expiryBuffer is subtracted from the recorded expiry when deciding whether a
// token is still usable, so a token never expires mid-request.
const expiryBuffer = 60 * time.Second

// RemoteCredential holds the OAuth token pair issued by the platform for one
// connected store.
type RemoteCredential struct {
	// StoreID identifies the connected platform store.
	StoreID string
	// AccessToken is the bearer token sent on every API request.
	AccessToken string
	// RefreshToken is exchanged for a new token pair when the access token
	// expires.
	RefreshToken string
	// ExpiresAt is the instant the access token stops being valid.
	ExpiresAt time.Time
	// Scope is the space-separated scope list granted by the store owner.
	Scope string
	// UpdatedAt is the last time the pair was rotated.
	UpdatedAt time.Time
}

// Usable reports whether the access token can still be sent, applying the
// safety buffer against clock skew and request latency.
func (c *RemoteCredential) Usable(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return now.Before(c.ExpiresAt.Add(-expiryBuffer))
}

// Refreshable reports whether a refresh grant can be attempted.
func (c *RemoteCredential) Refreshable() bool {
	return c != nil && c.RefreshToken != ""
}

// CredentialStore persists the token pair for a store. Save must replace the
// pair atomically so readers never observe a new access token with a stale
// expiry.
type CredentialStore interface {
	Get(ctx context.Context, storeID string) (*RemoteCredential, error)
	Save(ctx context.Context, cred *RemoteCredential) error
	Delete(ctx context.Context, storeID string) error
}
