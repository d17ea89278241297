package repositories

import (
	"context"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// TimesheetReader defines read operations for timesheet data.
type TimesheetReader interface {
	// FindTimesheetByID retrieves a timesheet by its unique identifier,
	// including soft-deleted ones (callers decide how to treat those).
	FindTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error)

	// FindTimesheetByUserAndWeek retrieves the non-deleted timesheet a user
	// owns for the given week start, or ErrNotFound.
	FindTimesheetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*domain.Timesheet, error)

	// ListTimesheetsByUser retrieves a paginated list of a user's non-deleted
	// timesheets using token-based pagination, newest week first.
	ListTimesheetsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Timesheet, *string, error)
}

// TimesheetWriter defines write operations for timesheet data.
type TimesheetWriter interface {
	// SaveTimesheet persists a new timesheet.
	SaveTimesheet(ctx context.Context, timesheet domain.Timesheet) error

	// UpdateTimesheetStatus transitions a timesheet from one status to
	// another. The update is guarded on the current status: if the row no
	// longer holds fromStatus the call returns ErrStateConflict so a racing
	// transition surfaces instead of silently overwriting.
	UpdateTimesheetStatus(ctx context.Context, timesheetID string, fromStatus, toStatus domain.TimesheetStatus, frozen bool, updatedBy string, updatedAt time.Time) error

	// SoftDeleteTimesheet marks a timesheet deleted without removing rows.
	SoftDeleteTimesheet(ctx context.Context, timesheetID string, deletedBy string, deletedAt time.Time) error

	// SubmitTimesheetWithApprovals atomically moves a timesheet to SUBMITTED,
	// marks any previous active approval records for it superseded, and
	// inserts the fresh approval records. All three steps happen in one
	// database transaction or not at all.
	SubmitTimesheetWithApprovals(ctx context.Context, timesheetID string, fromStatus domain.TimesheetStatus, approvals []domain.ApprovalRecord, actorID string, at time.Time) error
}

// TimeEntryReader defines read operations for time entries.
type TimeEntryReader interface {
	// FindTimeEntryByID retrieves a single non-deleted time entry.
	FindTimeEntryByID(ctx context.Context, entryID string) (*domain.TimeEntry, error)

	// FindEntriesByTimesheetID retrieves all non-deleted entries owned by a
	// timesheet, ordered by entry date.
	FindEntriesByTimesheetID(ctx context.Context, timesheetID string) ([]domain.TimeEntry, error)
}

// TimeEntryWriter defines write operations for time entries.
type TimeEntryWriter interface {
	// SaveTimeEntry persists a new time entry.
	SaveTimeEntry(ctx context.Context, entry domain.TimeEntry) error

	// UpdateTimeEntry updates the mutable fields of an existing entry.
	UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) error

	// SoftDeleteTimeEntry marks an entry deleted without removing the row.
	SoftDeleteTimeEntry(ctx context.Context, entryID string, deletedBy string, deletedAt time.Time) error
}

// TimesheetRepositoryFacade combines all timesheet-related repository
// interfaces for clients that need full access.
type TimesheetRepositoryFacade interface {
	TimesheetReader
	TimesheetWriter
	TimeEntryReader
	TimeEntryWriter
}
