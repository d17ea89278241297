package models

import "time"

// TimesheetStatus mirrors the lifecycle states stored in the timesheets table.
type TimesheetStatus string

// Timesheet is the database row shape for a weekly timesheet.
type Timesheet struct {
	TimesheetID string          `json:"timesheetID"`
	UserID      string          `json:"userID"`
	WeekStart   time.Time       `json:"weekStart"`
	WeekEnd     time.Time       `json:"weekEnd"`
	Status      TimesheetStatus `json:"status"`
	Frozen      bool            `json:"frozen"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}
