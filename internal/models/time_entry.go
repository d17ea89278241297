package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeEntry is the database row shape for a single unit of worked time.
type TimeEntry struct {
	EntryID     string          `json:"entryID"`
	TimesheetID string          `json:"timesheetID"`
	UserID      string          `json:"userID"`
	ProjectID   string          `json:"projectID"`
	TaskID      *string         `json:"taskID,omitempty"`
	EntryDate   time.Time       `json:"entryDate"`
	Hours       decimal.Decimal `json:"hours"`
	Billable    bool            `json:"billable"`
	Description string          `json:"description"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}
