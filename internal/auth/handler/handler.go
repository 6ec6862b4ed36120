// Package handler exposes the authentication flows over HTTP. Handlers stay
// thin: browser plumbing (cookies, redirects, envelopes) lives here, every
// decision lives in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"portalgate/internal/session"
	dErrors "portalgate/pkg/domain-errors"
	"portalgate/pkg/platform/httputil"
)

// AuthService defines the interface for the authentication flows.
type AuthService interface {
	BeginLogin(ctx context.Context, returnTo string) (*url.URL, error)
	CompleteLogin(ctx context.Context, r *http.Request) (*session.Session, string, error)
	Logout(ctx context.Context) error
	HandleSLO(ctx context.Context, r *http.Request) (*url.URL, error)
}

// Handler handles the authentication endpoints.
type Handler struct {
	service AuthService
	cookies *session.CookieCodec
	logger  *slog.Logger
}

// New creates an auth Handler.
func New(service AuthService, cookies *session.CookieCodec, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
		logger:  logger,
	}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/saml/login", h.handleLogin)
	r.Post("/saml/acs", h.handleACS)
	r.Get("/saml/slo", h.handleSLO)
	r.Post("/saml/slo", h.handleSLO)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleWhoami)
}

// handleLogin starts an SP-initiated login by bouncing the browser to the
// IdP.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.service.BeginLogin(r.Context(), r.URL.Query().Get("return_to"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

// handleACS consumes the IdP's SAML response and issues the session cookie.
func (h *Handler) handleACS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, returnTo, err := h.service.CompleteLogin(ctx, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.cookies.Issue(w, sess.ID); err != nil {
		h.logger.ErrorContext(ctx, "could not issue session cookie", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "could not issue session cookie"))
		return
	}
	http.Redirect(w, r, returnTo, http.StatusFound)
}

// handleSLO processes an IdP-initiated logout on either binding. The cookie
// is cleared unconditionally; whatever the message's fate, this browser asked
// to leave.
func (h *Handler) handleSLO(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.service.HandleSLO(r.Context(), r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.cookies.Clear(w)
	if redirect != nil {
		http.Redirect(w, r, redirect.String(), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout terminates the caller's session. The cookie is cleared only
// after the store delete is confirmed; a 502 here means the logout did not
// happen and the client must not be told otherwise.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.cookies.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

type whoamiResponse struct {
	SubjectID   string    `json:"subject_id"`
	SessionType string    `json:"session_type"`
	Roles       []string  `json:"roles,omitempty"`
	DeviceName  string    `json:"device_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// handleWhoami reports the caller's own session. Identity comes exclusively
// from the resolved session; nothing client-supplied is echoed back.
func (h *Handler) handleWhoami(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no active session"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, whoamiResponse{
		SubjectID:   sess.Principal.SubjectID,
		SessionType: sess.Principal.SessionType,
		Roles:       sess.Principal.Roles,
		DeviceName:  sess.DeviceName,
		CreatedAt:   sess.CreatedAt,
		ExpiresAt:   sess.ExpiresAt,
	})
}
