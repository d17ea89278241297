package services

import (
	"context"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
)

// TimesheetSvcFacade drives the weekly timesheet lifecycle and the time
// entries it owns.
type TimesheetSvcFacade interface {
	// CreateTimesheet opens a new draft timesheet for the given UTC Monday.
	CreateTimesheet(ctx context.Context, req dto.CreateTimesheetRequest, creatorUserID string) (*domain.Timesheet, error)

	// GetTimesheetByID retrieves a timesheet with its active entries.
	GetTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error)

	// ListTimesheetsByUser retrieves a page of a user's timesheets.
	ListTimesheetsByUser(ctx context.Context, userID string, params dto.ListTimesheetsParams) (*dto.ListTimesheetsResponse, error)

	// AddTimeEntry creates an entry under an editable timesheet.
	AddTimeEntry(ctx context.Context, timesheetID string, req dto.CreateTimeEntryRequest, actorID string) (*domain.TimeEntry, error)

	// UpdateTimeEntry edits an entry under an editable timesheet.
	UpdateTimeEntry(ctx context.Context, timesheetID, entryID string, req dto.UpdateTimeEntryRequest, actorID string) (*domain.TimeEntry, error)

	// RemoveTimeEntry soft-deletes an entry under an editable timesheet.
	RemoveTimeEntry(ctx context.Context, timesheetID, entryID string, actorID string) error

	// SubmitTimesheet moves a draft (or rejected) timesheet into review,
	// creating one fresh approval record per project referenced by entries.
	SubmitTimesheet(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error)

	// FreezeIfEligible freezes a timesheet once every approval record's
	// management tier has approved. A single pending or rejected record
	// fails the whole operation with no partial freeze.
	FreezeIfEligible(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error)

	// MarkBilled records that an invoicing cycle consumed the frozen totals.
	MarkBilled(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error)

	// SoftDeleteTimesheet marks a timesheet deleted. Frozen timesheets are
	// off limits; only the privileged hard-delete path may touch them.
	SoftDeleteTimesheet(ctx context.Context, timesheetID string, actorID string) error
}
