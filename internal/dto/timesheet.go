package dto

import (
	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// CreateTimesheetRequest opens a new weekly timesheet. WeekStart must be a
// Monday in the UTC calendar.
type CreateTimesheetRequest struct {
	WeekStart string `json:"weekStart" binding:"required,datetime=2006-01-02"`
}

// CreateTimeEntryRequest adds one unit of worked time to a draft timesheet.
type CreateTimeEntryRequest struct {
	ProjectID   string          `json:"projectID" binding:"required"`
	TaskID      *string         `json:"taskID,omitempty"`
	EntryDate   string          `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Hours       decimal.Decimal `json:"hours" binding:"required"`
	Billable    bool            `json:"billable"`
	Description string          `json:"description"`
}

// UpdateTimeEntryRequest updates the mutable fields of an entry. Nil fields
// are left unchanged.
type UpdateTimeEntryRequest struct {
	Hours       *decimal.Decimal `json:"hours,omitempty"`
	Billable    *bool            `json:"billable,omitempty"`
	Description *string          `json:"description,omitempty"`
	TaskID      *string          `json:"taskID,omitempty"`
}

// ListTimesheetsParams holds parameters for listing a user's timesheets.
type ListTimesheetsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// TimeEntryResponse is the API shape of one time entry.
type TimeEntryResponse struct {
	EntryID     string          `json:"entryID"`
	ProjectID   string          `json:"projectID"`
	TaskID      *string         `json:"taskID,omitempty"`
	EntryDate   string          `json:"entryDate"`
	Hours       decimal.Decimal `json:"hours"`
	Billable    bool            `json:"billable"`
	Description string          `json:"description"`
}

// TimesheetResponse is the API shape of one timesheet.
type TimesheetResponse struct {
	TimesheetID string              `json:"timesheetID"`
	UserID      string              `json:"userID"`
	WeekStart   string              `json:"weekStart"`
	WeekEnd     string              `json:"weekEnd"`
	Status      string              `json:"status"`
	Frozen      bool                `json:"frozen"`
	Entries     []TimeEntryResponse `json:"entries,omitempty"`
}

// ListTimesheetsResponse is a page of timesheets plus the next cursor.
type ListTimesheetsResponse struct {
	Timesheets []TimesheetResponse `json:"timesheets"`
	NextToken  *string             `json:"nextToken,omitempty"`
}

// ToTimeEntryResponse converts a domain TimeEntry to its API shape.
func ToTimeEntryResponse(e *domain.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		EntryID:     e.EntryID,
		ProjectID:   e.ProjectID,
		TaskID:      e.TaskID,
		EntryDate:   FormatDate(e.EntryDate),
		Hours:       e.Hours,
		Billable:    e.Billable,
		Description: e.Description,
	}
}

// ToTimesheetResponse converts a domain Timesheet to its API shape.
func ToTimesheetResponse(ts *domain.Timesheet) TimesheetResponse {
	resp := TimesheetResponse{
		TimesheetID: ts.TimesheetID,
		UserID:      ts.UserID,
		WeekStart:   FormatDate(ts.WeekStart),
		WeekEnd:     FormatDate(ts.WeekEnd),
		Status:      string(ts.Status),
		Frozen:      ts.Frozen,
	}
	if len(ts.Entries) > 0 {
		resp.Entries = make([]TimeEntryResponse, len(ts.Entries))
		for i := range ts.Entries {
			resp.Entries[i] = ToTimeEntryResponse(&ts.Entries[i])
		}
	}
	return resp
}
