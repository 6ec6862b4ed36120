package session

import (
	"context"
	"time"
)

// keyPrefix namespaces session records in the shared store.
const keyPrefix = "sess:"

// Key derives the store key for a session id.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Store is the session store contract. Implementations report
// sentinel.ErrNotFound for missing or expired sessions and wrap
// infrastructure failures in sentinel.ErrUnavailable; callers on the request
// path treat the latter as fail-closed.
type Store interface {
	// Get resolves a session id to its record, with ExpiresAt populated from
	// the remaining TTL.
	Get(ctx context.Context, id string) (*Session, error)

	// Set persists the record under its id with the given TTL, creating or
	// replacing it.
	Set(ctx context.Context, sess *Session, ttl time.Duration) error

	// Destroy removes the record. Destroying an absent id is not an error.
	Destroy(ctx context.Context, id string) error

	// Touch extends the record's TTL without rewriting it.
	Touch(ctx context.Context, id string, ttl time.Duration) error
}
