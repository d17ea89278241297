package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// ApprovalDecision is the reviewer's verdict on one tier.
type ApprovalDecision string

const (
	DecisionApprove ApprovalDecision = "APPROVE"
	DecisionReject  ApprovalDecision = "REJECT"
)

// AdvanceApprovalRequest carries one tier decision. Version echoes the
// version the reviewer last read; a stale version is a retryable conflict.
type AdvanceApprovalRequest struct {
	Tier     string           `json:"tier" binding:"required,oneof=LEAD MANAGER MANAGEMENT"`
	Decision ApprovalDecision `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Reason   string           `json:"reason"`
	Version  int64            `json:"version" binding:"min=0"`
}

// TierDecisionResponse is the API shape of one tier's decision.
type TierDecisionResponse struct {
	Status    string     `json:"status"`
	ActorID   string     `json:"actorID,omitempty"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
}

// ApprovalRecordResponse is the API shape of one approval ledger record.
type ApprovalRecordResponse struct {
	ApprovalID    string               `json:"approvalID"`
	TimesheetID   string               `json:"timesheetID"`
	ProjectID     string               `json:"projectID"`
	Lead          TierDecisionResponse `json:"lead"`
	Manager       TierDecisionResponse `json:"manager"`
	Management    TierDecisionResponse `json:"management"`
	WorkedHours   decimal.Decimal      `json:"workedHours"`
	BillableHours decimal.Decimal      `json:"billableHours"`
	RejectReason  string               `json:"rejectReason,omitempty"`
	Superseded    bool                 `json:"superseded"`
	Version       int64                `json:"version"`
}

func toTierDecisionResponse(d domain.TierDecision) TierDecisionResponse {
	return TierDecisionResponse{
		Status:    string(d.Status),
		ActorID:   d.ActorID,
		DecidedAt: d.DecidedAt,
	}
}

// ToApprovalRecordResponse converts a domain ApprovalRecord to its API shape.
func ToApprovalRecordResponse(r *domain.ApprovalRecord) ApprovalRecordResponse {
	return ApprovalRecordResponse{
		ApprovalID:    r.ApprovalID,
		TimesheetID:   r.TimesheetID,
		ProjectID:     r.ProjectID,
		Lead:          toTierDecisionResponse(r.Lead),
		Manager:       toTierDecisionResponse(r.Manager),
		Management:    toTierDecisionResponse(r.Management),
		WorkedHours:   r.WorkedHours,
		BillableHours: r.BillableHours,
		RejectReason:  r.RejectReason,
		Superseded:    r.Superseded,
		Version:       r.Version,
	}
}

// ToApprovalRecordResponses converts a slice of approval records.
func ToApprovalRecordResponses(records []domain.ApprovalRecord) []ApprovalRecordResponse {
	out := make([]ApprovalRecordResponse, len(records))
	for i := range records {
		out[i] = ToApprovalRecordResponse(&records[i])
	}
	return out
}
