package domain

import "time"

// TimesheetStatus indicates where a weekly timesheet sits in the review lifecycle.
type TimesheetStatus string

const (
	StatusDraft             TimesheetStatus = "DRAFT"
	StatusSubmitted         TimesheetStatus = "SUBMITTED"
	StatusManagerApproved   TimesheetStatus = "MANAGER_APPROVED"
	StatusManagementPending TimesheetStatus = "MANAGEMENT_PENDING"
	StatusFrozen            TimesheetStatus = "FROZEN"
	StatusRejected          TimesheetStatus = "REJECTED"
	StatusBilled            TimesheetStatus = "BILLED"
)

// Editable reports whether time entries under a timesheet in this status may
// still be created, edited, or deleted. A rejected timesheet is back in the
// owner's hands for correction.
func (s TimesheetStatus) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Timesheet is the weekly container that owns a user's time entries.
// week_start is always a Monday in the UTC calendar and week_end is exactly
// six days later; both are enforced at the boundary and re-checked at read
// time because a wrong week boundary flows straight into client invoices.
type Timesheet struct {
	TimesheetID string          `json:"timesheetID"` // Primary key (UUID)
	UserID      string          `json:"userID"`      // Owning user
	WeekStart   time.Time       `json:"weekStart"`   // Monday, UTC calendar date
	WeekEnd     time.Time       `json:"weekEnd"`     // WeekStart + 6 days
	Status      TimesheetStatus `json:"status"`
	Frozen      bool            `json:"frozen"` // Set once StatusFrozen is reached; never cleared
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
	AuditFields

	// Entries are loaded separately by most operations.
	Entries []TimeEntry `json:"entries,omitempty"`
}
