// Package service orchestrates the authentication flows: SP-initiated login,
// local logout and IdP-initiated single logout. It owns the rules tying the
// session store, the logout-token index and the SAML validator together;
// handlers stay thin.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"portalgate/internal/samlvalidator"
	"portalgate/internal/session"
	"portalgate/internal/slo"
	dErrors "portalgate/pkg/domain-errors"
	"portalgate/pkg/platform/audit"
	"portalgate/pkg/platform/middleware/metadata"
	"portalgate/pkg/requestcontext"
)

var (
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portalgate_logins_total",
		Help: "Login completions by outcome",
	}, []string{"outcome"})

	logoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portalgate_logouts_total",
		Help: "Session terminations by kind",
	}, []string{"kind"})

	sloTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portalgate_slo_requests_total",
		Help: "IdP-initiated logout requests by outcome",
	}, []string{"outcome"})
)

// SessionStore is the slice of the session store the auth flows need.
type SessionStore interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Set(ctx context.Context, sess *session.Session, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// LogoutIndex is the logout-token index contract.
type LogoutIndex interface {
	Put(ctx context.Context, key, sessionID string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// SAMLProvider validates inbound SAML messages and builds the outbound
// redirect URLs of the SSO and SLO round trips.
type SAMLProvider interface {
	ValidateResponse(r *http.Request) samlvalidator.Result
	ValidateLogoutRequest(r *http.Request) samlvalidator.Result
	AuthnRedirectURL(relayState string) (*url.URL, error)
	LogoutResponseURL(requestID, relayState string) (*url.URL, error)
}

// AuditPublisher records authentication lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// roleAttributes are the assertion attribute names role values are read
// from, in priority order.
var roleAttributes = []string{"roles", "role", "groups"}

// Service implements the authentication flows for one gateway audience.
type Service struct {
	sessions    SessionStore
	index       LogoutIndex
	saml        SAMLProvider
	auditor     AuditPublisher
	logger      *slog.Logger
	sessionType string
	sessionTTL  time.Duration
	newID       func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditPublisher enables audit event emission.
func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithIDGenerator overrides session id generation. Test hook.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// New constructs the auth service.
func New(sessions SessionStore, index LogoutIndex, saml SAMLProvider, sessionType string, sessionTTL time.Duration, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if index == nil {
		return nil, fmt.Errorf("logout index is required")
	}
	if saml == nil {
		return nil, fmt.Errorf("saml provider is required")
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	s := &Service{
		sessions:    sessions,
		index:       index,
		saml:        saml,
		logger:      slog.Default(),
		sessionType: sessionType,
		sessionTTL:  sessionTTL,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// BeginLogin builds the IdP redirect that starts an SP-initiated login.
// returnTo travels as relay state and must be a relative path; anything else
// would let a crafted login link bounce the browser to a foreign origin.
func (s *Service) BeginLogin(ctx context.Context, returnTo string) (*url.URL, error) {
	if returnTo == "" {
		returnTo = "/"
	}
	if !isRelativePath(returnTo) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "return_to must be a relative path")
	}

	redirect, err := s.saml.AuthnRedirectURL(returnTo)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "could not build login redirect", err)
	}
	return redirect, nil
}

// CompleteLogin consumes the SAML response posted to the ACS endpoint and
// establishes a session. A pre-existing session is discarded and a fresh id
// issued, so an id planted before authentication never survives it. Returns
// the new session and the validated post-login redirect path.
func (s *Service) CompleteLogin(ctx context.Context, r *http.Request) (*session.Session, string, error) {
	result := s.saml.ValidateResponse(r)
	switch result.Status {
	case samlvalidator.StatusNotApplicable:
		loginsTotal.WithLabelValues("no_response").Inc()
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "request carries no SAML response")
	case samlvalidator.StatusInvalid:
		loginsTotal.WithLabelValues("invalid").Inc()
		s.logger.WarnContext(ctx, "login rejected", "reason", result.Reason)
		s.emit(ctx, audit.EventLoginFailed, "", "", result.Reason)
		return nil, "", dErrors.New(dErrors.CodeUnauthorized, "SAML authentication failed")
	}

	now := requestcontext.Now(ctx)
	profile := result.Profile

	// Session rotation on re-authentication. The prior record is removed;
	// only its logout token may carry over.
	var existingToken *slo.Token
	if prior := session.FromContext(ctx); prior.Authenticated() {
		if prior.FederationKey != nil && prior.FederationKey.NameID == profile.NameID && prior.FederationKey.SessionIndex == profile.SessionIndex {
			existingToken = prior.LogoutToken
		}
		if err := s.sessions.Destroy(ctx, prior.ID); err != nil {
			s.logger.WarnContext(ctx, "could not remove prior session on re-authentication",
				"error", err)
		}
	}

	sess := &session.Session{
		ID: s.newID(),
		Principal: &session.Principal{
			SubjectID:   profile.NameID,
			SessionType: s.sessionType,
			Roles:       extractRoles(profile.Attributes),
			Attributes:  profile.Attributes,
		},
		FederationKey: &session.FederationKey{
			NameID:       profile.NameID,
			SessionIndex: profile.SessionIndex,
		},
		DeviceName: metadata.GetDeviceName(ctx),
		ClientIP:   metadata.GetClientIP(ctx),
		CreatedAt:  now,
	}
	token := slo.NextToken(existingToken, sess.ID, now, s.sessionTTL)
	sess.LogoutToken = &token

	if err := s.sessions.Set(ctx, sess, s.sessionTTL); err != nil {
		loginsTotal.WithLabelValues("store_error").Inc()
		return nil, "", dErrors.Wrap(dErrors.CodeUnavailable, "session could not be established", err)
	}

	key := slo.ComputeKey(profile.NameID, profile.SessionIndex)
	if err := s.index.Put(ctx, key, sess.ID, token.ExpiresAt.Sub(now)); err != nil {
		// Without the index entry an IdP logout could never find this
		// session. Refuse the login rather than leave it unreachable.
		if derr := s.sessions.Destroy(ctx, sess.ID); derr != nil {
			s.logger.WarnContext(ctx, "could not roll back session after index failure",
				"error", derr)
		}
		loginsTotal.WithLabelValues("store_error").Inc()
		return nil, "", dErrors.Wrap(dErrors.CodeUnavailable, "session could not be established", err)
	}

	loginsTotal.WithLabelValues("success").Inc()
	s.emit(ctx, audit.EventSessionCreated, sess.ID, profile.NameID, "")

	returnTo := r.FormValue("RelayState")
	if !isRelativePath(returnTo) {
		returnTo = "/"
	}
	return sess, returnTo, nil
}

// emit records an audit event, filling request-scoped fields from context.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, sessionID, subjectID, reason string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp:   requestcontext.Now(ctx),
		Gateway:     s.sessionType,
		Action:      string(action),
		SessionID:   sessionID,
		SubjectHash: audit.HashSubject(subjectID),
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    metadata.GetClientIP(ctx),
		DeviceName:  metadata.GetDeviceName(ctx),
		Reason:      reason,
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

// extractRoles pulls role values out of the assertion attributes.
func extractRoles(attributes map[string][]string) []string {
	for _, name := range roleAttributes {
		if values, ok := attributes[name]; ok && len(values) > 0 {
			return values
		}
	}
	return nil
}

// isRelativePath accepts only same-origin request paths. Protocol-relative
// paths ("//evil.example") parse as valid request URIs but change origin, so
// they are refused explicitly.
func isRelativePath(path string) bool {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return false
	}
	return govalidator.IsRequestURI(path)
}
