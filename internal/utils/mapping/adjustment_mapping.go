package mapping

import (
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/models"
)

// ToModelAdjustment converts a domain BillingAdjustment to its row shape.
func ToModelAdjustment(d domain.BillingAdjustment) models.BillingAdjustment {
	return models.BillingAdjustment{
		AdjustmentID:          d.AdjustmentID,
		UserID:                d.UserID,
		ProjectID:             d.ProjectID,
		PeriodStart:           d.PeriodStart,
		PeriodEnd:             d.PeriodEnd,
		TotalWorkedHours:      d.TotalWorkedHours,
		OriginalBillableHours: d.OriginalBillableHours,
		AdjustmentHours:       d.AdjustmentHours,
		TotalBillableHours:    d.TotalBillableHours,
		AdjustedBillableHours: d.AdjustedBillableHours,
		Reason:                d.Reason,
		ActorID:               d.ActorID,
		DeletedAt:             d.DeletedAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAdjustment converts a row shape to a domain BillingAdjustment.
func ToDomainAdjustment(m models.BillingAdjustment) domain.BillingAdjustment {
	return domain.BillingAdjustment{
		AdjustmentID:          m.AdjustmentID,
		UserID:                m.UserID,
		ProjectID:             m.ProjectID,
		PeriodStart:           m.PeriodStart,
		PeriodEnd:             m.PeriodEnd,
		TotalWorkedHours:      m.TotalWorkedHours,
		OriginalBillableHours: m.OriginalBillableHours,
		AdjustmentHours:       m.AdjustmentHours,
		TotalBillableHours:    m.TotalBillableHours,
		AdjustedBillableHours: m.AdjustedBillableHours,
		Reason:                m.Reason,
		ActorID:               m.ActorID,
		DeletedAt:             m.DeletedAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAdjustmentEvent converts a decision-log row to its domain shape.
func ToDomainAdjustmentEvent(m models.AdjustmentEvent) domain.AdjustmentEvent {
	return domain.AdjustmentEvent{
		EventID:      m.EventID,
		AdjustmentID: m.AdjustmentID,
		Kind:         domain.AdjustmentEventKind(m.Kind),
		ActorID:      m.ActorID,
		Reason:       m.Reason,
		OccurredAt:   m.OccurredAt,
	}
}
