package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingAdjustment is a sparse correction keyed by (user, project, period).
// It overrides the aggregated billable total for exactly that scope key
// without touching the underlying time entries. At most one non-deleted
// adjustment may exist per scope key; soft-deleted adjustments never block a
// new active one.
type BillingAdjustment struct {
	AdjustmentID string    `json:"adjustmentID"` // Primary key (UUID)
	UserID       string    `json:"userID"`
	ProjectID    string    `json:"projectID"`
	PeriodStart  time.Time `json:"periodStart"` // UTC calendar date, inclusive
	PeriodEnd    time.Time `json:"periodEnd"`   // UTC calendar date, inclusive

	// Baselines computed by the aggregation engine at creation time.
	TotalWorkedHours      decimal.Decimal `json:"totalWorkedHours"`
	OriginalBillableHours decimal.Decimal `json:"originalBillableHours"`

	// AdjustmentHours is the signed delta applied by the billing authority.
	AdjustmentHours decimal.Decimal `json:"adjustmentHours"`

	// TotalBillableHours = max(0, TotalWorkedHours + AdjustmentHours).
	TotalBillableHours decimal.Decimal `json:"totalBillableHours"`
	// AdjustedBillableHours = max(0, OriginalBillableHours + AdjustmentHours).
	// This is the figure EffectiveBillableHours reports; adjusting against
	// worked hours instead of billable hours understates nothing only when
	// every entry is billable.
	AdjustedBillableHours decimal.Decimal `json:"adjustedBillableHours"`

	Reason    string     `json:"reason"`
	ActorID   string     `json:"actorID"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	AuditFields
}

// Active reports whether the adjustment currently occupies its scope key.
func (a *BillingAdjustment) Active() bool {
	return a.DeletedAt == nil
}

// AdjustmentEventKind tags entries in the append-only adjustment decision log.
type AdjustmentEventKind string

const (
	AdjustmentCreated    AdjustmentEventKind = "CREATED"
	AdjustmentSuperseded AdjustmentEventKind = "SUPERSEDED"
	AdjustmentDeleted    AdjustmentEventKind = "DELETED"
	AdjustmentRestored   AdjustmentEventKind = "RESTORED"
)

// AdjustmentEvent is one row of the append-only decision log. The log exists
// because an adjustment can flip between active and deleted repeatedly; a
// single nullable deleted_at column cannot carry that history.
type AdjustmentEvent struct {
	EventID      string              `json:"eventID"`
	AdjustmentID string              `json:"adjustmentID"`
	Kind         AdjustmentEventKind `json:"kind"`
	ActorID      string              `json:"actorID"`
	Reason       string              `json:"reason,omitempty"`
	OccurredAt   time.Time           `json:"occurredAt"`
}
