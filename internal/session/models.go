// Package session implements the gateway's server-side sessions: opaque ids
// handed to the browser in a signed cookie, with all state held in a TTL
// store. The cookie carries no identity; a session resolves to a principal
// only through the store.
package session

import (
	"context"
	"time"

	"portalgate/internal/slo"
)

// Principal is the authenticated identity attached to a session after a
// successful SAML login.
type Principal struct {
	SubjectID   string              `json:"subject_id"`
	SessionType string              `json:"session_type"`
	Roles       []string            `json:"roles"`
	Attributes  map[string][]string `json:"attributes,omitempty"`
}

// FederationKey holds the identifiers the IdP uses to reference this login in
// a later single-logout request. SessionIndex may be empty when the IdP does
// not issue one.
type FederationKey struct {
	NameID       string `json:"name_id"`
	SessionIndex string `json:"session_index"`
}

// Session is the server-side record behind a cookie. ExpiresAt is derived
// from the store TTL on read rather than persisted, so the stored record and
// the store's own expiry can never disagree.
type Session struct {
	ID            string         `json:"-"`
	Principal     *Principal     `json:"principal,omitempty"`
	FederationKey *FederationKey `json:"federation_key,omitempty"`
	LogoutToken   *slo.Token     `json:"logout_token,omitempty"`
	DeviceName    string         `json:"device_name,omitempty"`
	ClientIP      string         `json:"client_ip,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ExpiresAt     time.Time      `json:"-"`
}

// Authenticated reports whether the session carries a principal.
func (s *Session) Authenticated() bool {
	return s != nil && s.Principal != nil
}

type contextKey struct{ name string }

var sessionKey = contextKey{"session"}

// WithSession attaches a resolved session to the request context.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext returns the session resolved for this request, or nil when the
// request is anonymous.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	if sess := FromContext(ctx); sess.Authenticated() {
		return sess.Principal
	}
	return nil
}
