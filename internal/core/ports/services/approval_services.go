package services

import (
	"context"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
)

// ApprovalSvcFacade operates the per-project approval ledger.
type ApprovalSvcFacade interface {
	// ListApprovals retrieves the active approval records of a timesheet.
	ListApprovals(ctx context.Context, timesheetID string) ([]domain.ApprovalRecord, error)

	// AdvanceApproval applies one reviewer's decision to one tier of one
	// approval record. Tiers only move forward (pending to approved or
	// rejected); a rejection cascades to the parent timesheet. A stale
	// version in the request surfaces as a retryable conflict.
	AdvanceApproval(ctx context.Context, approvalID string, req dto.AdvanceApprovalRequest, actorID string) (*domain.ApprovalRecord, error)

	// ReconcileMissingApprovalRecords creates pending approval records for
	// projects that have entries in the timesheet but no active ledger
	// record. This is the only sanctioned repair for that integrity fault
	// and is invoked deliberately by an operator, never automatically.
	ReconcileMissingApprovalRecords(ctx context.Context, timesheetID string, actorID string) ([]domain.ApprovalRecord, error)
}
