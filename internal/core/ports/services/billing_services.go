package services

import (
	"context"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
)

// BillingSvcFacade is the read-only aggregation engine plus the
// invoicing-facing effective-hours lookup.
type BillingSvcFacade interface {
	// AggregateBilling computes worked and billable hour totals per
	// (user, project) over the closed interval [start, end], counting only
	// hours behind management-approved approval records. The run is
	// idempotent and side-effect free.
	AggregateBilling(ctx context.Context, start, end time.Time) (*domain.BillingAggregate, error)

	// EffectiveBillableHours returns the adjusted billable total when an
	// active adjustment exists for the exact scope key, else the raw
	// aggregated billable hours. Overlapping-but-different periods are
	// different scope keys; totals are never averaged or stacked.
	EffectiveBillableHours(ctx context.Context, userID, projectID string, periodStart, periodEnd time.Time) (*dto.EffectiveBillableHoursResponse, error)
}
