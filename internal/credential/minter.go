// Package credential mints the short-lived service credentials attached to
// proxied upstream calls. A credential is derived from the session principal
// on every call and never stored; revocation is simply the session ending.
package credential

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"portalgate/internal/session"
	strutil "portalgate/pkg/platform/strings"
)

// rolePrefix is the canonical prefix upstream services authorize against.
const rolePrefix = "ROLE_"

// Claims is the credential payload presented to upstream services.
type Claims struct {
	SessionType string   `json:"session_type"`
	Roles       []string `json:"roles"`
	RequestID   string   `json:"request_id,omitempty"`
	jwt.RegisteredClaims
}

// Minter signs service credentials with a shared HMAC key.
type Minter struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	clock      func() time.Time
}

// Option configures a Minter.
type Option func(*Minter)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(m *Minter) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMinter constructs a credential minter.
func NewMinter(signingKey, issuer, audience string, ttl time.Duration, opts ...Option) *Minter {
	m := &Minter{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Mint issues a credential for the principal. Roles are uppercased and
// canonicalized to the ROLE_ prefix so upstream authorization sees one
// spelling regardless of how the IdP formatted them; a value arriving both
// bare and pre-prefixed collapses to one entry.
func (m *Minter) Mint(principal *session.Principal, requestID string) (string, error) {
	if principal == nil {
		return "", fmt.Errorf("mint credential: no principal")
	}

	roles := make([]string, 0, len(principal.Roles))
	for _, role := range principal.Roles {
		roles = append(roles, strings.ToUpper(role))
	}

	now := m.clock()
	claims := Claims{
		SessionType: principal.SessionType,
		Roles:       strutil.EnsurePrefix(roles, rolePrefix),
		RequestID:   requestID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.SubjectID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign credential: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a credential. Used by tests and by services
// that share the signing key.
func (m *Minter) Validate(credential string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.signingKey, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("validate credential: %w", err)
	}
	return claims, nil
}
