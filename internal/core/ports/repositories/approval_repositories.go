package repositories

import (
	"context"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// ApprovalReader defines read operations for the per-project approval ledger.
type ApprovalReader interface {
	// FindApprovalByID retrieves a single approval record.
	FindApprovalByID(ctx context.Context, approvalID string) (*domain.ApprovalRecord, error)

	// FindActiveApprovalsByTimesheetID retrieves the non-superseded approval
	// records of a timesheet, one per project.
	FindActiveApprovalsByTimesheetID(ctx context.Context, timesheetID string) ([]domain.ApprovalRecord, error)

	// FindActiveApprovalsByTimesheetIDs retrieves active approval records for
	// multiple timesheets, grouped by timesheet ID. Timesheets with no
	// records map to an empty slice.
	FindActiveApprovalsByTimesheetIDs(ctx context.Context, timesheetIDs []string) (map[string][]domain.ApprovalRecord, error)
}

// ApprovalWriter defines write operations for the approval ledger.
type ApprovalWriter interface {
	// InsertApprovalRecords batch-inserts new approval records. Used by the
	// reconciliation path; submit-time creation goes through
	// TimesheetWriter.SubmitTimesheetWithApprovals.
	InsertApprovalRecords(ctx context.Context, records []domain.ApprovalRecord) error

	// UpdateTierDecision advances one tier of one approval record. The update
	// is guarded on expectedVersion; a lost optimistic-concurrency race
	// returns ErrConflict so the caller can re-read and retry.
	UpdateTierDecision(ctx context.Context, approvalID string, tier domain.ReviewTier, decision domain.TierDecision, rejectReason string, expectedVersion int64, updatedBy string, updatedAt time.Time) error
}

// ApprovalRepositoryFacade combines approval ledger reads and writes.
type ApprovalRepositoryFacade interface {
	ApprovalReader
	ApprovalWriter
}
