package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingLine is one row of an aggregation run: the worked and billable hour
// totals for a (user, project) pair over the requested period. Only hours
// behind a management-approved approval record are counted.
type BillingLine struct {
	UserID        string          `json:"userID"`
	ProjectID     string          `json:"projectID"`
	PeriodStart   time.Time       `json:"periodStart"`
	PeriodEnd     time.Time       `json:"periodEnd"`
	WorkedHours   decimal.Decimal `json:"workedHours"`
	BillableHours decimal.Decimal `json:"billableHours"`
}

// BillingFaultKind classifies why a timesheet/project was excluded from an
// aggregation run.
type BillingFaultKind string

const (
	FaultMissingApproval BillingFaultKind = "MISSING_APPROVAL_RECORD"
	FaultIntegrity       BillingFaultKind = "INTEGRITY"
)

// BillingFault flags a timesheet (and optionally a project) that the
// aggregation excluded rather than guessing at. A flagged exclusion is
// distinguishable from "nothing worked"; a silent zero is not.
type BillingFault struct {
	TimesheetID string           `json:"timesheetID"`
	UserID      string           `json:"userID"`
	ProjectID   string           `json:"projectID,omitempty"`
	Kind        BillingFaultKind `json:"kind"`
	Detail      string           `json:"detail"`
}

// BillingAggregate is the outcome of one aggregation run. Re-running over the
// same inputs yields an identical aggregate; the computation consumes no
// events and has no side effects.
type BillingAggregate struct {
	PeriodStart time.Time      `json:"periodStart"`
	PeriodEnd   time.Time      `json:"periodEnd"`
	Lines       []BillingLine  `json:"lines"`
	Faults      []BillingFault `json:"faults,omitempty"`
}

// EntrySums carries the worked/billable hour sums for one project's entries
// inside a single timesheet, restricted to a date interval.
type EntrySums struct {
	WorkedHours   decimal.Decimal
	BillableHours decimal.Decimal
}
