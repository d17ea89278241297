package dto

import (
	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// AggregateBillingParams bounds one aggregation run.
type AggregateBillingParams struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
	End   string `form:"end" binding:"required,datetime=2006-01-02"`
}

// BillingLineResponse is one (user, project) row of an aggregation run.
type BillingLineResponse struct {
	UserID        string          `json:"userID"`
	ProjectID     string          `json:"projectID"`
	WorkedHours   decimal.Decimal `json:"workedHours"`
	BillableHours decimal.Decimal `json:"billableHours"`
}

// BillingFaultResponse flags a timesheet/project the run excluded.
type BillingFaultResponse struct {
	TimesheetID string `json:"timesheetID"`
	UserID      string `json:"userID"`
	ProjectID   string `json:"projectID,omitempty"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail"`
}

// BillingAggregateResponse is the outcome of one aggregation run.
type BillingAggregateResponse struct {
	PeriodStart string                 `json:"periodStart"`
	PeriodEnd   string                 `json:"periodEnd"`
	Lines       []BillingLineResponse  `json:"lines"`
	Faults      []BillingFaultResponse `json:"faults,omitempty"`
}

// EffectiveHoursSource says where an effective billable figure came from.
type EffectiveHoursSource string

const (
	SourceAdjusted   EffectiveHoursSource = "ADJUSTED"
	SourceAggregated EffectiveHoursSource = "AGGREGATED"
)

// EffectiveBillableHoursResponse is the invoicing-facing answer for one
// (user, project, period) scope key.
type EffectiveBillableHoursResponse struct {
	UserID        string               `json:"userID"`
	ProjectID     string               `json:"projectID"`
	PeriodStart   string               `json:"periodStart"`
	PeriodEnd     string               `json:"periodEnd"`
	BillableHours decimal.Decimal      `json:"billableHours"`
	Source        EffectiveHoursSource `json:"source"`
	AdjustmentID  string               `json:"adjustmentID,omitempty"`
}

// ToBillingAggregateResponse converts a domain aggregate to its API shape.
func ToBillingAggregateResponse(agg *domain.BillingAggregate) BillingAggregateResponse {
	resp := BillingAggregateResponse{
		PeriodStart: FormatDate(agg.PeriodStart),
		PeriodEnd:   FormatDate(agg.PeriodEnd),
		Lines:       make([]BillingLineResponse, len(agg.Lines)),
	}
	for i, line := range agg.Lines {
		resp.Lines[i] = BillingLineResponse{
			UserID:        line.UserID,
			ProjectID:     line.ProjectID,
			WorkedHours:   line.WorkedHours,
			BillableHours: line.BillableHours,
		}
	}
	for _, f := range agg.Faults {
		resp.Faults = append(resp.Faults, BillingFaultResponse{
			TimesheetID: f.TimesheetID,
			UserID:      f.UserID,
			ProjectID:   f.ProjectID,
			Kind:        string(f.Kind),
			Detail:      f.Detail,
		})
	}
	return resp
}
