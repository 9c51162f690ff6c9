package domain

import "time"

// Audit event kinds.
const (
	AuditEventInsert = "insert"
	AuditEventUpdate = "update"
)

// AuditRecord is an immutable append-only entry describing one mutating
// action. Exactly one record exists per successful mutation; it is written in
// the same transaction as the mutation itself.
type AuditRecord struct {
	ID         int64
	OccurredAt time.Time
	// ActorID is nil for self-service actions such as registration.
	ActorID *int64
	View    string
	Event   string
	Element string
	// Before is nil for inserts; both values are serialized JSON with
	// credential material redacted.
	Before *string
	After  string
}
