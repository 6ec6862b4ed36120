// Package postgres persists audit events durably for compliance retention.
// The gateway treats this store as optional: it is wired only when an audit
// DSN is configured, and the publisher falls back to the in-memory store
// otherwise.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	audit "portalgate/pkg/platform/audit"
)

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to the audit database and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events
			(id, category, occurred_at, gateway, action, session_id, subject_hash, request_id, client_ip, device_name, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		uuid.NewString(),
		string(event.Category),
		event.Timestamp,
		event.Gateway,
		event.Action,
		event.SessionID,
		event.SubjectHash,
		event.RequestID,
		event.ClientIP,
		event.DeviceName,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, gateway, action, session_id, subject_hash, request_id, client_ip, device_name, reason
		FROM audit_events
		WHERE session_id = $1
		ORDER BY occurred_at`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Timestamp, &e.Gateway, &e.Action, &e.SessionID,
			&e.SubjectHash, &e.RequestID, &e.ClientIP, &e.DeviceName, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
