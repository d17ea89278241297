package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is one atomic unit of worked time. It is owned by exactly one
// Timesheet and may only be mutated while that timesheet is editable.
type TimeEntry struct {
	EntryID     string          `json:"entryID"`     // Primary key (UUID)
	TimesheetID string          `json:"timesheetID"` // Owning timesheet
	UserID      string          `json:"userID"`      // Denormalized owner, matches the timesheet's
	ProjectID   string          `json:"projectID"`
	TaskID      *string         `json:"taskID,omitempty"`
	EntryDate   time.Time       `json:"entryDate"` // UTC calendar date within the timesheet week
	Hours       decimal.Decimal `json:"hours"`     // 0 < hours <= 24
	Billable    bool            `json:"billable"`
	Description string          `json:"description"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}
