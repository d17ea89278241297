package repositories

import (
	"context"
	"time"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// BillingReader defines the read-only queries behind the aggregation engine.
// Aggregation takes no locks and is safe to run concurrently and repeatedly.
type BillingReader interface {
	// FindActiveTimesheetsOverlapping retrieves non-deleted timesheets whose
	// [week_start, week_end] interval overlaps the closed [start, end]
	// interval. Soft-deleted timesheets are absent, not zero.
	FindActiveTimesheetsOverlapping(ctx context.Context, start, end time.Time) ([]domain.Timesheet, error)

	// SumEntryHoursByProject sums non-deleted entry hours of one timesheet,
	// restricted to dates within [start, end], grouped by project. Worked
	// hours count every entry; billable hours count only billable entries.
	SumEntryHoursByProject(ctx context.Context, timesheetID string, start, end time.Time) (map[string]domain.EntrySums, error)
}
