package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the state of a single review tier on an approval record.
type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "NOT_REQUIRED"
	ApprovalPending     ApprovalStatus = "PENDING"
	ApprovalApproved    ApprovalStatus = "APPROVED"
	ApprovalRejected    ApprovalStatus = "REJECTED"
)

// Resolved reports whether the tier has reached a terminal decision.
// NOT_REQUIRED never transitions, so it counts as resolved.
func (s ApprovalStatus) Resolved() bool {
	return s == ApprovalApproved || s == ApprovalRejected || s == ApprovalNotRequired
}

// ReviewTier identifies which review tier is acting on an approval record.
type ReviewTier string

const (
	TierLead       ReviewTier = "LEAD"
	TierManager    ReviewTier = "MANAGER"
	TierManagement ReviewTier = "MANAGEMENT"
)

// TierDecision captures one reviewer's decision on one tier.
type TierDecision struct {
	Status    ApprovalStatus `json:"status"`
	ActorID   string         `json:"actorID,omitempty"`
	DecidedAt *time.Time     `json:"decidedAt,omitempty"`
}

// ApprovalRecord gates billability for one (timesheet, project) pair. One
// record exists per distinct project referenced by the timesheet's entries,
// created at submit time and never created speculatively. Records are never
// deleted; re-submission after a rejection supersedes the old record and
// inserts a fresh one, preserving the decision history.
type ApprovalRecord struct {
	ApprovalID  string `json:"approvalID"` // Primary key (UUID)
	TimesheetID string `json:"timesheetID"`
	ProjectID   string `json:"projectID"`

	Lead       TierDecision `json:"lead"`
	Manager    TierDecision `json:"manager"`
	Management TierDecision `json:"management"`

	// Snapshot of the hours in scope at the time the record was created.
	WorkedHours   decimal.Decimal `json:"workedHours"`
	BillableHours decimal.Decimal `json:"billableHours"`

	RejectReason string `json:"rejectReason,omitempty"`
	Superseded   bool   `json:"superseded"` // True once replaced by a re-submission

	// Version supports optimistic concurrency: two reviewers of different
	// tiers may race on the same record and a lost update must surface as a
	// retryable conflict, never a silent overwrite.
	Version int64 `json:"version"`
	AuditFields
}

// Tier returns the decision for the named tier.
func (r *ApprovalRecord) Tier(tier ReviewTier) TierDecision {
	switch tier {
	case TierLead:
		return r.Lead
	case TierManager:
		return r.Manager
	default:
		return r.Management
	}
}

// PreManagementResolved reports whether every required pre-management tier
// (lead where required, manager) has approved, or whether any tier rejected.
// A NOT_REQUIRED tier counts in favour.
func (r *ApprovalRecord) PreManagementResolved() (approved bool, rejected bool) {
	for _, d := range []TierDecision{r.Lead, r.Manager} {
		switch d.Status {
		case ApprovalRejected:
			return false, true
		case ApprovalApproved, ApprovalNotRequired:
			// resolved in favour
		default:
			return false, false
		}
	}
	return true, false
}
