// Package requestid assigns each request a correlation id, honoring one
// supplied by a trusted front proxy.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"portalgate/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware ensures every request carries a correlation id, echoed on the
// response and propagated to upstream calls.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(headerName, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
