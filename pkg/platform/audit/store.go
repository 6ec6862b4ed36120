package audit

import "context"

// Store persists audit events. Implementations must be safe for concurrent
// Append calls.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}
