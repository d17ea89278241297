package domain

import "time"

// AuditEvent is one structured fact emitted to the audit sink: a state
// transition, an approval decision, or an adjustment lifecycle change.
// The engine emits these fire-and-forget; delivery durability is the
// sink's responsibility.
type AuditEvent struct {
	Event      string         `json:"event"`
	ActorID    string         `json:"actorID"`
	EntityID   string         `json:"entityID"`
	Before     string         `json:"before,omitempty"`
	After      string         `json:"after,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Properties map[string]any `json:"properties,omitempty"`
}
