package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingAdjustment is the database row shape for a billing correction.
// Uniqueness of the (user, project, period) scope key is enforced by a
// partial unique index over rows where deleted_at IS NULL.
type BillingAdjustment struct {
	AdjustmentID string    `json:"adjustmentID"`
	UserID       string    `json:"userID"`
	ProjectID    string    `json:"projectID"`
	PeriodStart  time.Time `json:"periodStart"`
	PeriodEnd    time.Time `json:"periodEnd"`

	TotalWorkedHours      decimal.Decimal `json:"totalWorkedHours"`
	OriginalBillableHours decimal.Decimal `json:"originalBillableHours"`
	AdjustmentHours       decimal.Decimal `json:"adjustmentHours"`
	TotalBillableHours    decimal.Decimal `json:"totalBillableHours"`
	AdjustedBillableHours decimal.Decimal `json:"adjustedBillableHours"`

	Reason    string     `json:"reason"`
	ActorID   string     `json:"actorID"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	AuditFields
}

// AdjustmentEvent is one append-only decision-log row for an adjustment.
type AdjustmentEvent struct {
	EventID      string    `json:"eventID"`
	AdjustmentID string    `json:"adjustmentID"`
	Kind         string    `json:"kind"`
	ActorID      string    `json:"actorID"`
	Reason       string    `json:"reason,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
