package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portsrepo "github.com/worklog-hq/timesheet_backend/internal/core/ports/repositories"
	"github.com/worklog-hq/timesheet_backend/internal/models"
	"github.com/worklog-hq/timesheet_backend/internal/utils/mapping"
)

type PgxBillingRepository struct {
	BaseRepository
}

// newPgxBillingRepository creates the read-only repository behind the
// aggregation engine.
func newPgxBillingRepository(pool *pgxpool.Pool) portsrepo.BillingReader {
	return &PgxBillingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.BillingReader = (*PgxBillingRepository)(nil)

// FindActiveTimesheetsOverlapping retrieves non-deleted timesheets whose week
// interval overlaps the closed [start, end] interval.
func (r *PgxBillingRepository) FindActiveTimesheetsOverlapping(ctx context.Context, start, end time.Time) ([]domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + `
		FROM timesheets
		WHERE deleted_at IS NULL AND week_start <= $2 AND week_end >= $1
		ORDER BY week_start, timesheet_id;`

	rows, err := r.Pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping timesheets: %w", err)
	}
	defer rows.Close()

	modelTimesheets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Timesheet, error) {
		return scanTimesheet(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan overlapping timesheets: %w", err)
	}

	timesheets := make([]domain.Timesheet, len(modelTimesheets))
	for i, m := range modelTimesheets {
		timesheets[i] = mapping.ToDomainTimesheet(m)
	}
	return timesheets, nil
}

// SumEntryHoursByProject sums non-deleted entry hours of one timesheet within
// [start, end], grouped by project. The billable sum counts only billable
// entries; both sums run in SQL so decimal precision never leaves the
// database as floats.
func (r *PgxBillingRepository) SumEntryHoursByProject(ctx context.Context, timesheetID string, start, end time.Time) (map[string]domain.EntrySums, error) {
	query := `
		SELECT project_id,
		       COALESCE(SUM(hours), 0) AS worked_hours,
		       COALESCE(SUM(CASE WHEN billable THEN hours ELSE 0 END), 0) AS billable_hours
		FROM time_entries
		WHERE timesheet_id = $1 AND deleted_at IS NULL AND entry_date BETWEEN $2 AND $3
		GROUP BY project_id;
	`
	rows, err := r.Pool.Query(ctx, query, timesheetID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum entry hours of timesheet %s: %w", timesheetID, err)
	}
	defer rows.Close()

	sums := make(map[string]domain.EntrySums)
	for rows.Next() {
		var projectID string
		var worked, billable decimal.Decimal
		if err := rows.Scan(&projectID, &worked, &billable); err != nil {
			return nil, fmt.Errorf("failed to scan entry sums: %w", err)
		}
		sums[projectID] = domain.EntrySums{WorkedHours: worked, BillableHours: billable}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entry sums: %w", err)
	}
	return sums, nil
}
