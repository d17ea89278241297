package mapping

import (
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/models"
)

// ToModelTimesheet converts a domain Timesheet to a model Timesheet.
func ToModelTimesheet(d domain.Timesheet) models.Timesheet {
	return models.Timesheet{
		TimesheetID: d.TimesheetID,
		UserID:      d.UserID,
		WeekStart:   d.WeekStart,
		WeekEnd:     d.WeekEnd,
		Status:      models.TimesheetStatus(d.Status),
		Frozen:      d.Frozen,
		DeletedAt:   d.DeletedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTimesheet converts a model Timesheet to a domain Timesheet.
func ToDomainTimesheet(m models.Timesheet) domain.Timesheet {
	return domain.Timesheet{
		TimesheetID: m.TimesheetID,
		UserID:      m.UserID,
		WeekStart:   m.WeekStart,
		WeekEnd:     m.WeekEnd,
		Status:      domain.TimesheetStatus(m.Status),
		Frozen:      m.Frozen,
		DeletedAt:   m.DeletedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelTimeEntry converts a domain TimeEntry to a model TimeEntry.
func ToModelTimeEntry(d domain.TimeEntry) models.TimeEntry {
	return models.TimeEntry{
		EntryID:     d.EntryID,
		TimesheetID: d.TimesheetID,
		UserID:      d.UserID,
		ProjectID:   d.ProjectID,
		TaskID:      d.TaskID,
		EntryDate:   d.EntryDate,
		Hours:       d.Hours,
		Billable:    d.Billable,
		Description: d.Description,
		DeletedAt:   d.DeletedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTimeEntry converts a model TimeEntry to a domain TimeEntry.
func ToDomainTimeEntry(m models.TimeEntry) domain.TimeEntry {
	return domain.TimeEntry{
		EntryID:     m.EntryID,
		TimesheetID: m.TimesheetID,
		UserID:      m.UserID,
		ProjectID:   m.ProjectID,
		TaskID:      m.TaskID,
		EntryDate:   m.EntryDate,
		Hours:       m.Hours,
		Billable:    m.Billable,
		Description: m.Description,
		DeletedAt:   m.DeletedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTimeEntrySlice converts a slice of model entries to domain entries.
func ToDomainTimeEntrySlice(ms []models.TimeEntry) []domain.TimeEntry {
	out := make([]domain.TimeEntry, len(ms))
	for i, m := range ms {
		out[i] = ToDomainTimeEntry(m)
	}
	return out
}
