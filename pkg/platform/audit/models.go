// Package audit defines the gateway's audit events and the store contract
// they are persisted through. Events capture authentication lifecycle facts
// (who logged in or out, from which device, on which gateway) without ever
// carrying raw federation identifiers; subjects appear as SHA-256 hashes.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores can fan out.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	Gateway     string // which gateway audience emitted this (citizen, employee)
	Action      string
	SessionID   string
	SubjectHash string // SHA-256 of the federation subject, never the raw NameID
	RequestID   string
	ClientIP    string
	DeviceName  string
	Reason      string
}

type AuditEvent string

const (
	EventSessionCreated     AuditEvent = "session_created"
	EventSessionDestroyed   AuditEvent = "session_destroyed"
	EventLoginFailed        AuditEvent = "login_failed"
	EventSLOCompleted       AuditEvent = "slo_completed"
	EventSLOUnknownSession  AuditEvent = "slo_unknown_session"
	EventSLOFallbackCleanup AuditEvent = "slo_fallback_cleanup"
	EventLogoutTokenRefresh AuditEvent = "logout_token_refreshed"
	EventCredentialMinted   AuditEvent = "credential_minted"
)

// eventCategories maps each audit event to its category. Session teardown
// paths are security-relevant; routine issuance is operations.
var eventCategories = map[AuditEvent]EventCategory{
	EventSessionCreated:     CategoryCompliance,
	EventSessionDestroyed:   CategorySecurity,
	EventLoginFailed:        CategorySecurity,
	EventSLOCompleted:       CategorySecurity,
	EventSLOUnknownSession:  CategoryOperations,
	EventSLOFallbackCleanup: CategorySecurity,
	EventLogoutTokenRefresh: CategoryOperations,
	EventCredentialMinted:   CategoryOperations,
}

// CategoryFor returns the category for an event name, defaulting to
// operations for unknown actions.
func CategoryFor(action AuditEvent) EventCategory {
	if c, ok := eventCategories[action]; ok {
		return c
	}
	return CategoryOperations
}

// HashSubject produces the stable, non-reversible subject reference used in
// events and logs.
func HashSubject(subjectID string) string {
	if subjectID == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(subjectID))
	return hex.EncodeToString(sum[:])
}
