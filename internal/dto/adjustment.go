package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// CreateAdjustmentRequest creates a billing correction for an exact
// (user, project, period) scope key. AdjustmentHours is a signed delta.
type CreateAdjustmentRequest struct {
	UserID          string          `json:"userID" binding:"required"`
	ProjectID       string          `json:"projectID" binding:"required"`
	PeriodStart     string          `json:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd       string          `json:"periodEnd" binding:"required,datetime=2006-01-02"`
	AdjustmentHours decimal.Decimal `json:"adjustmentHours"`
	Reason          string          `json:"reason" binding:"required"`
}

// SupersedeAdjustmentRequest replaces an existing active adjustment with a
// fresh one for the same scope key, atomically.
type SupersedeAdjustmentRequest struct {
	AdjustmentHours decimal.Decimal `json:"adjustmentHours"`
	Reason          string          `json:"reason" binding:"required"`
}

// AdjustmentResponse is the API shape of one billing adjustment.
type AdjustmentResponse struct {
	AdjustmentID          string          `json:"adjustmentID"`
	UserID                string          `json:"userID"`
	ProjectID             string          `json:"projectID"`
	PeriodStart           string          `json:"periodStart"`
	PeriodEnd             string          `json:"periodEnd"`
	TotalWorkedHours      decimal.Decimal `json:"totalWorkedHours"`
	OriginalBillableHours decimal.Decimal `json:"originalBillableHours"`
	AdjustmentHours       decimal.Decimal `json:"adjustmentHours"`
	TotalBillableHours    decimal.Decimal `json:"totalBillableHours"`
	AdjustedBillableHours decimal.Decimal `json:"adjustedBillableHours"`
	Reason                string          `json:"reason"`
	ActorID               string          `json:"actorID"`
	Deleted               bool            `json:"deleted"`
}

// AdjustmentEventResponse is one decision-log row.
type AdjustmentEventResponse struct {
	EventID    string    `json:"eventID"`
	Kind       string    `json:"kind"`
	ActorID    string    `json:"actorID"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ToAdjustmentResponse converts a domain BillingAdjustment to its API shape.
func ToAdjustmentResponse(a *domain.BillingAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		AdjustmentID:          a.AdjustmentID,
		UserID:                a.UserID,
		ProjectID:             a.ProjectID,
		PeriodStart:           FormatDate(a.PeriodStart),
		PeriodEnd:             FormatDate(a.PeriodEnd),
		TotalWorkedHours:      a.TotalWorkedHours,
		OriginalBillableHours: a.OriginalBillableHours,
		AdjustmentHours:       a.AdjustmentHours,
		TotalBillableHours:    a.TotalBillableHours,
		AdjustedBillableHours: a.AdjustedBillableHours,
		Reason:                a.Reason,
		ActorID:               a.ActorID,
		Deleted:               a.DeletedAt != nil,
	}
}

// ToAdjustmentEventResponses converts a decision log to its API shape.
func ToAdjustmentEventResponses(events []domain.AdjustmentEvent) []AdjustmentEventResponse {
	out := make([]AdjustmentEventResponse, len(events))
	for i, ev := range events {
		out[i] = AdjustmentEventResponse{
			EventID:    ev.EventID,
			Kind:       string(ev.Kind),
			ActorID:    ev.ActorID,
			Reason:     ev.Reason,
			OccurredAt: ev.OccurredAt,
		}
	}
	return out
}
