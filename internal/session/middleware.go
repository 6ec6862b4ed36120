package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"portalgate/internal/slo"
	dErrors "portalgate/pkg/domain-errors"
	"portalgate/pkg/platform/httputil"
	"portalgate/pkg/platform/sentinel"
	"portalgate/pkg/requestcontext"
)

var (
	resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portalgate_session_resolutions_total",
		Help: "Session resolution outcomes per request",
	}, []string{"outcome"})

	tokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portalgate_logout_token_refreshes_total",
		Help: "Logout token refresh attempts by result",
	}, []string{"result"})
)

// Middleware resolves the session cookie on every request. A valid cookie
// whose record exists yields an authenticated context; everything else,
// including a store outage, yields an anonymous one. The store outage case is
// the fail-closed rule: a session that cannot be verified is not trusted.
//
// Resolution also applies the sliding-expiry policy (a store touch per
// request) and the logout-token margin check, both best effort.
func Middleware(store Store, index slo.Index, codec *CookieCodec, sessionTTL time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID, err := codec.Read(r)
			if err != nil {
				resolutions.WithLabelValues("anonymous").Inc()
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(ctx, sessionID)
			if err != nil {
				switch {
				case errors.Is(err, sentinel.ErrNotFound):
					resolutions.WithLabelValues("expired").Inc()
					codec.Clear(w)
				default:
					resolutions.WithLabelValues("store_error").Inc()
					logger.ErrorContext(ctx, "session store unavailable, treating request as anonymous",
						"error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			resolutions.WithLabelValues("authenticated").Inc()

			now := requestcontext.Now(ctx)
			if err := store.Touch(ctx, sessionID, sessionTTL); err != nil {
				logger.WarnContext(ctx, "session touch failed", "error", err)
			} else {
				sess.ExpiresAt = now.Add(sessionTTL)
			}

			refreshLogoutToken(r, sess, store, index, sessionTTL, logger)

			ctx = WithSession(ctx, sess)
			ctx = requestcontext.WithSessionID(ctx, sess.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// refreshLogoutToken keeps the logout-token index entry ahead of the session
// expiry. Failures are logged and swallowed: losing a refresh only narrows
// the logout window, while failing the request would log users out during a
// store blip.
func refreshLogoutToken(r *http.Request, sess *Session, store Store, index slo.Index, sessionTTL time.Duration, logger *slog.Logger) {
	if sess.LogoutToken == nil || sess.FederationKey == nil {
		return
	}

	ctx := r.Context()
	now := requestcontext.Now(ctx)
	if !slo.NeedsRefresh(sess.ExpiresAt, sess.LogoutToken.ExpiresAt) {
		return
	}

	token := slo.NextToken(sess.LogoutToken, sess.ID, now, sessionTTL)
	sess.LogoutToken = &token

	key := slo.ComputeKey(sess.FederationKey.NameID, sess.FederationKey.SessionIndex)
	if err := index.Put(ctx, key, sess.ID, token.ExpiresAt.Sub(now)); err != nil {
		tokenRefreshes.WithLabelValues("index_error").Inc()
		logger.WarnContext(ctx, "logout token index refresh failed", "error", err)
		return
	}
	if err := store.Set(ctx, sess, sessionTTL); err != nil {
		tokenRefreshes.WithLabelValues("store_error").Inc()
		logger.WarnContext(ctx, "logout token session update failed", "error", err)
		return
	}
	tokenRefreshes.WithLabelValues("refreshed").Inc()
}

// RequireAuth guards routes that need an authenticated principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).Authenticated() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
