package mapping

import (
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/models"
)

func toModelDecision(d domain.TierDecision) (models.ApprovalStatus, *string, *time.Time) {
	var actor *string
	if d.ActorID != "" {
		a := d.ActorID
		actor = &a
	}
	return models.ApprovalStatus(d.Status), actor, d.DecidedAt
}

func toDomainDecision(status models.ApprovalStatus, actor *string, decidedAt *time.Time) domain.TierDecision {
	d := domain.TierDecision{Status: domain.ApprovalStatus(status), DecidedAt: decidedAt}
	if actor != nil {
		d.ActorID = *actor
	}
	return d
}

// ToModelApprovalRecord converts a domain ApprovalRecord to its row shape.
func ToModelApprovalRecord(d domain.ApprovalRecord) models.ApprovalRecord {
	m := models.ApprovalRecord{
		ApprovalID:    d.ApprovalID,
		TimesheetID:   d.TimesheetID,
		ProjectID:     d.ProjectID,
		WorkedHours:   d.WorkedHours,
		BillableHours: d.BillableHours,
		RejectReason:  d.RejectReason,
		Superseded:    d.Superseded,
		Version:       d.Version,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	m.LeadStatus, m.LeadActorID, m.LeadDecidedAt = toModelDecision(d.Lead)
	m.ManagerStatus, m.ManagerActorID, m.ManagerDecidedAt = toModelDecision(d.Manager)
	m.ManagementStatus, m.ManagementActorID, m.ManagementDecidedAt = toModelDecision(d.Management)
	return m
}

// ToDomainApprovalRecord converts a row shape to a domain ApprovalRecord.
func ToDomainApprovalRecord(m models.ApprovalRecord) domain.ApprovalRecord {
	return domain.ApprovalRecord{
		ApprovalID:    m.ApprovalID,
		TimesheetID:   m.TimesheetID,
		ProjectID:     m.ProjectID,
		Lead:          toDomainDecision(m.LeadStatus, m.LeadActorID, m.LeadDecidedAt),
		Manager:       toDomainDecision(m.ManagerStatus, m.ManagerActorID, m.ManagerDecidedAt),
		Management:    toDomainDecision(m.ManagementStatus, m.ManagementActorID, m.ManagementDecidedAt),
		WorkedHours:   m.WorkedHours,
		BillableHours: m.BillableHours,
		RejectReason:  m.RejectReason,
		Superseded:    m.Superseded,
		Version:       m.Version,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainApprovalRecordSlice converts a slice of rows to domain records.
func ToDomainApprovalRecordSlice(ms []models.ApprovalRecord) []domain.ApprovalRecord {
	out := make([]domain.ApprovalRecord, len(ms))
	for i, m := range ms {
		out[i] = ToDomainApprovalRecord(m)
	}
	return out
}
