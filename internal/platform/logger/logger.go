// Package logger builds the process logger. JSON to stdout; the log pipeline
// does the rest.
package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger tagged with the gateway role.
func New(gatewayRole string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With("gateway", gatewayRole)
}
