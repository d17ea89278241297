package repositories

import (
	"context"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// AdjustmentReader defines read operations for billing adjustments.
type AdjustmentReader interface {
	// FindAdjustmentByID retrieves an adjustment, deleted or not.
	FindAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.BillingAdjustment, error)

	// FindActiveAdjustmentByScope retrieves the single non-deleted adjustment
	// for an exact (user, project, period) scope key, or ErrNotFound.
	// Partially-overlapping periods are distinct scope keys and never match.
	FindActiveAdjustmentByScope(ctx context.Context, userID, projectID string, periodStart, periodEnd time.Time) (*domain.BillingAdjustment, error)

	// ListAdjustmentEvents retrieves the append-only decision log for an
	// adjustment, oldest first.
	ListAdjustmentEvents(ctx context.Context, adjustmentID string) ([]domain.AdjustmentEvent, error)
}

// AdjustmentWriter defines write operations for billing adjustments. The
// single-active-adjustment-per-scope-key invariant is enforced by a partial
// unique index over non-deleted rows; every violation surfaces as ErrConflict.
type AdjustmentWriter interface {
	// CreateAdjustment inserts a new active adjustment and its CREATED log
	// row in one transaction. Returns ErrConflict if an active adjustment
	// already occupies the scope key.
	CreateAdjustment(ctx context.Context, adjustment domain.BillingAdjustment, event domain.AdjustmentEvent) error

	// SupersedeAdjustment soft-deletes the existing adjustment and inserts
	// its replacement atomically: both happen or neither does, so no
	// concurrent writer ever observes zero or two active records for the
	// scope key. Returns ErrConflict if the existing record was already
	// deleted or modified concurrently.
	SupersedeAdjustment(ctx context.Context, existingID string, replacement domain.BillingAdjustment, events []domain.AdjustmentEvent) error

	// SoftDeleteAdjustment marks an active adjustment deleted and appends a
	// DELETED log row. Returns ErrConflict if the record is already deleted.
	SoftDeleteAdjustment(ctx context.Context, adjustmentID string, deletedBy string, deletedAt time.Time, event domain.AdjustmentEvent) error

	// RestoreAdjustment clears the soft-delete marker and appends a RESTORED
	// log row. Returns ErrConflict if another active adjustment has taken the
	// scope key in the meantime; restoring is never an automatic merge.
	RestoreAdjustment(ctx context.Context, adjustmentID string, restoredBy string, restoredAt time.Time, event domain.AdjustmentEvent) error
}

// AdjustmentRepositoryFacade combines adjustment reads and writes.
type AdjustmentRepositoryFacade interface {
	AdjustmentReader
	AdjustmentWriter
}
