package services

import (
	"context"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
)

// AdjustmentSvcFacade is the billing adjustment overlay.
type AdjustmentSvcFacade interface {
	// CreateAdjustment creates the single active adjustment for a scope key.
	// Creation is not an upsert: if an active adjustment already exists the
	// call fails with a conflict and the caller must supersede explicitly.
	CreateAdjustment(ctx context.Context, req dto.CreateAdjustmentRequest, actorID string) (*domain.BillingAdjustment, error)

	// SupersedeAdjustment soft-deletes an existing active adjustment and
	// creates its replacement in one atomic step.
	SupersedeAdjustment(ctx context.Context, existingID string, req dto.SupersedeAdjustmentRequest, actorID string) (*domain.BillingAdjustment, error)

	// SoftDeleteAdjustment retires an active adjustment.
	SoftDeleteAdjustment(ctx context.Context, adjustmentID string, actorID string) error

	// RestoreAdjustment re-activates a soft-deleted adjustment, re-checking
	// the scope-key uniqueness invariant first.
	RestoreAdjustment(ctx context.Context, adjustmentID string, actorID string) (*domain.BillingAdjustment, error)

	// GetAdjustmentByID retrieves an adjustment, deleted or not.
	GetAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.BillingAdjustment, error)

	// ListAdjustmentHistory retrieves the append-only decision log.
	ListAdjustmentHistory(ctx context.Context, adjustmentID string) ([]domain.AdjustmentEvent, error)
}
