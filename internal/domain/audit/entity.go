package audit

import (
	"encoding/json"
	"time"
)

// Entry - Append-only audit trail row. Every state transition and monetary
// mutation in the ledger writes one, inside the same transaction as the
// mutation itself, so automated corrections can be traced and reverted.
type Entry struct {
	ID         string
	EntityType string // "payroll_week", "payroll_record", "debt_record"
	EntityID   string
	Action     string // "create", "update", "transition", "mark_paid", ...
	ActorID    string // employee/user id, or "system" for batch jobs
	Before     json.RawMessage
	After      json.RawMessage
	CreatedAt  time.Time
}

const SystemActor = "system"

// NewEntry marshals the before/after snapshots. Marshal failures degrade to
// null snapshots rather than blocking the audited operation.
func NewEntry(entityType, entityID, action, actorID string, before, after interface{}) Entry {
	return Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		Before:     marshal(before),
		After:      marshal(after),
	}
}

func marshal(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
