// Package httputil centralizes JSON response writing for the HTTP layer so
// every handler produces the same error envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "portalgate/pkg/domain-errors"
)

// WriteError translates a domain error into the JSON error envelope. Internal
// errors deliberately omit the description so store or validator detail never
// reaches the browser.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeUnavailable {
		var de *dErrors.Error
		if errors.As(err, &de) && de.Message != "" {
			body["error_description"] = de.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
