// Package slo maintains the logout-token index: a secondary, TTL-bound
// mapping from a federation identity (NameID + SessionIndex) to the gateway
// session it belongs to. IdP-initiated logout requests carry only federation
// identifiers, so this index is the only way to find the browser session to
// invalidate.
//
// The index and the session store expire independently; there is no
// transaction linking them. Correctness rests on a margin invariant instead:
// an index entry always outlives the session it protects by at least
// RefreshThreshold, enforced by refreshing the entry whenever the gap
// narrows.
package slo

import (
	"context"
	"time"
)

const (
	// keyPrefix namespaces index entries in the shared store.
	keyPrefix = "slo:"

	// keySeparator sits between NameID and SessionIndex. Three colons so an
	// absent SessionIndex ("slo:U1:::") can never collide with a different
	// NameID or be read as a truncated key.
	keySeparator = ":::"

	// RefreshThreshold is the minimum margin the index entry must keep over
	// the session expiry. Below this, the entry is refreshed.
	RefreshThreshold = 30 * time.Minute

	// ExpiryMargin is how far beyond the session TTL a refreshed entry and
	// its token reach.
	ExpiryMargin = 60 * time.Minute
)

// ComputeKey derives the index key for a federation identity. Deterministic;
// an empty sessionIndex yields a distinct key rather than coalescing with any
// real index value.
func ComputeKey(nameID, sessionIndex string) string {
	return keyPrefix + nameID + keySeparator + sessionIndex
}

// Token is the logout token carried on a session: an opaque value plus its
// own expiry, which always trails the index entry's TTL.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Index is the logout-token index contract. Implementations are single-key
// TTL stores; no multi-key atomicity is assumed.
type Index interface {
	// Put writes or overwrites the entry for key, pointing at sessionID.
	Put(ctx context.Context, key, sessionID string, ttl time.Duration) error

	// Lookup resolves key to a session id, or sentinel.ErrNotFound.
	Lookup(ctx context.Context, key string) (string, error)

	// Delete removes the entry. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// NeedsRefresh reports whether the token's remaining margin over the session
// expiry has fallen below RefreshThreshold.
func NeedsRefresh(sessionExpires, tokenExpires time.Time) bool {
	return tokenExpires.Sub(sessionExpires) < RefreshThreshold
}

// NextToken computes the token to persist for a session. An unexpired
// existing token keeps its value and only has its expiry extended, so a
// re-authentication in one tab cannot invalidate an in-flight logout token
// in another. Absent or expired tokens default their value to the session id.
func NextToken(existing *Token, sessionID string, now time.Time, sessionTTL time.Duration) Token {
	token := Token{
		Value:     sessionID,
		ExpiresAt: now.Add(sessionTTL + ExpiryMargin),
	}
	if existing != nil && existing.ExpiresAt.After(now) {
		token.Value = existing.Value
	}
	return token
}
