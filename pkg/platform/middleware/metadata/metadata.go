// Package metadata extracts client-facing request metadata (IP, User-Agent,
// device display name) into the context for audit and session bookkeeping.
package metadata

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}
type contextKeyDeviceName struct{}

// ClientMetadata extracts client IP, User-Agent and a parsed device display
// name from the request. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyClientIP{}, ClientIPFromRequest(r))
		ctx = context.WithValue(ctx, contextKeyUserAgent{}, ua)
		ctx = context.WithValue(ctx, contextKeyDeviceName{}, DeviceDisplayName(ua))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgent retrieves the raw User-Agent from the context.
func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return ua
	}
	return ""
}

// GetDeviceName retrieves the parsed device display name from the context.
func GetDeviceName(ctx context.Context) string {
	if name, ok := ctx.Value(contextKeyDeviceName{}).(string); ok {
		return name
	}
	return ""
}

// WithClientMetadata injects client metadata into a context. Useful for
// service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, ua string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP)
	ctx = context.WithValue(ctx, contextKeyUserAgent{}, ua)
	return context.WithValue(ctx, contextKeyDeviceName{}, DeviceDisplayName(ua))
}

// DeviceDisplayName renders a User-Agent as "Browser on OS" for session
// listings and audit events. Unknown agents come back as "Unknown device".
func DeviceDisplayName(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return "Unknown device"
	}
	parsed := useragent.New(ua)
	name, _ := parsed.Browser()
	os := parsed.OSInfo().Name
	switch {
	case name != "" && os != "":
		return name + " on " + os
	case name != "":
		return name
	case os != "":
		return os
	default:
		return "Unknown device"
	}
}

// ClientIPFromRequest extracts the original client IP, honoring the proxy
// headers our ingress sets.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first entry is the original client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
