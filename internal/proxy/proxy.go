// Package proxy forwards authenticated requests to the upstream services,
// swapping the browser's cookie for a freshly minted service credential on
// every call.
package proxy

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"portalgate/internal/credential"
	"portalgate/internal/session"
	dErrors "portalgate/pkg/domain-errors"
	platformhttp "portalgate/pkg/platform/httputil"
	"portalgate/pkg/requestcontext"
)

var forwardsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portalgate_proxy_forwards_total",
	Help: "Requests forwarded upstream by outcome",
}, []string{"outcome"})

// Forwarder proxies requests upstream. The session cookie never crosses this
// boundary; upstream sees only the minted credential and the request id.
type Forwarder struct {
	reverse *httputil.ReverseProxy
	minter  *credential.Minter
	logger  *slog.Logger
}

// New builds a forwarder for one upstream base URL.
func New(upstream *url.URL, minter *credential.Minter, logger *slog.Logger) *Forwarder {
	reverse := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			forwardsTotal.WithLabelValues("upstream_error").Inc()
			logger.ErrorContext(r.Context(), "upstream request failed", "error", err)
			platformhttp.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "upstream unavailable"))
		},
	}
	return &Forwarder{reverse: reverse, minter: minter, logger: logger}
}

func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := session.PrincipalFromContext(ctx)
	if principal == nil {
		forwardsTotal.WithLabelValues("unauthenticated").Inc()
		platformhttp.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	requestID := requestcontext.RequestID(ctx)
	cred, err := f.minter.Mint(principal, requestID)
	if err != nil {
		forwardsTotal.WithLabelValues("mint_error").Inc()
		f.logger.ErrorContext(ctx, "could not mint service credential", "error", err)
		platformhttp.WriteError(w, dErrors.New(dErrors.CodeInternal, "could not forward request"))
		return
	}

	r.Header.Del("Cookie")
	r.Header.Set("Authorization", "Bearer "+cred)
	if requestID != "" {
		r.Header.Set("X-Request-ID", requestID)
	}

	forwardsTotal.WithLabelValues("forwarded").Inc()
	f.reverse.ServeHTTP(w, r)
}
