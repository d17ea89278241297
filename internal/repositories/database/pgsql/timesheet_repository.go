package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portsrepo "github.com/worklog-hq/timesheet_backend/internal/core/ports/repositories"
	"github.com/worklog-hq/timesheet_backend/internal/models"
	"github.com/worklog-hq/timesheet_backend/internal/utils/mapping"
	"github.com/worklog-hq/timesheet_backend/internal/utils/pagination"
)

type PgxTimesheetRepository struct {
	BaseRepository
}

// newPgxTimesheetRepository creates a new repository for timesheet data.
func newPgxTimesheetRepository(pool *pgxpool.Pool) portsrepo.TimesheetRepositoryFacade {
	return &PgxTimesheetRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.TimesheetRepositoryFacade = (*PgxTimesheetRepository)(nil)

const timesheetColumns = `timesheet_id, user_id, week_start, week_end, status, frozen, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

func scanTimesheet(row pgx.Row) (models.Timesheet, error) {
	var m models.Timesheet
	err := row.Scan(
		&m.TimesheetID,
		&m.UserID,
		&m.WeekStart,
		&m.WeekEnd,
		&m.Status,
		&m.Frozen,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindTimesheetByID retrieves a timesheet by ID, soft-deleted rows included.
func (r *PgxTimesheetRepository) FindTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE timesheet_id = $1;`

	m, err := scanTimesheet(r.Pool.QueryRow(ctx, query, timesheetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet by id %s: %w", timesheetID, err)
	}

	ts := mapping.ToDomainTimesheet(m)
	return &ts, nil
}

// FindTimesheetByUserAndWeek retrieves the non-deleted timesheet a user owns
// for one week start.
func (r *PgxTimesheetRepository) FindTimesheetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*domain.Timesheet, error) {
	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE user_id = $1 AND week_start = $2 AND deleted_at IS NULL;`

	m, err := scanTimesheet(r.Pool.QueryRow(ctx, query, userID, weekStart))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet for user %s week %s: %w", userID, weekStart.Format("2006-01-02"), err)
	}

	ts := mapping.ToDomainTimesheet(m)
	return &ts, nil
}

// ListTimesheetsByUser retrieves a page of a user's non-deleted timesheets,
// newest week first, using token-based pagination.
func (r *PgxTimesheetRepository) ListTimesheetsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Timesheet, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE user_id = $1 AND deleted_at IS NULL`
	args := []interface{}{userID}

	if nextToken != nil && *nextToken != "" {
		weekStart, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (week_start, created_at) < ($2, $3)`
		args = append(args, weekStart, createdAt)
	}

	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY week_start DESC, created_at DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query timesheets for user %s: %w", userID, err)
	}
	defer rows.Close()

	modelTimesheets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Timesheet, error) {
		return scanTimesheet(row)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan timesheets: %w", err)
	}

	var token *string
	if len(modelTimesheets) > limit {
		modelTimesheets = modelTimesheets[:limit]
		last := modelTimesheets[len(modelTimesheets)-1]
		t := pagination.EncodeToken(last.WeekStart, last.CreatedAt)
		token = &t
	}

	timesheets := make([]domain.Timesheet, len(modelTimesheets))
	for i, m := range modelTimesheets {
		timesheets[i] = mapping.ToDomainTimesheet(m)
	}
	return timesheets, token, nil
}

// SaveTimesheet persists a new timesheet.
func (r *PgxTimesheetRepository) SaveTimesheet(ctx context.Context, timesheet domain.Timesheet) error {
	m := mapping.ToModelTimesheet(timesheet)
	query := `
		INSERT INTO timesheets (timesheet_id, user_id, week_start, week_end, status, frozen, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.TimesheetID,
		m.UserID,
		m.WeekStart,
		m.WeekEnd,
		m.Status,
		m.Frozen,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: timesheet for this user and week already exists", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save timesheet %s: %w", m.TimesheetID, err)
	}
	return nil
}

// UpdateTimesheetStatus transitions a timesheet between statuses. The WHERE
// clause carries the expected current status so a racing transition loses
// loudly instead of overwriting.
func (r *PgxTimesheetRepository) UpdateTimesheetStatus(ctx context.Context, timesheetID string, fromStatus, toStatus domain.TimesheetStatus, frozen bool, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE timesheets
		SET status = $1, frozen = $2, last_updated_at = $3, last_updated_by = $4
		WHERE timesheet_id = $5 AND status = $6 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, string(toStatus), frozen, updatedAt, updatedBy, timesheetID, string(fromStatus))
	if err != nil {
		return fmt.Errorf("failed to update status of timesheet %s: %w", timesheetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: timesheet %s is no longer in status %s", apperrors.ErrStateConflict, timesheetID, fromStatus)
	}
	return nil
}

// SoftDeleteTimesheet marks a timesheet deleted without removing rows.
func (r *PgxTimesheetRepository) SoftDeleteTimesheet(ctx context.Context, timesheetID string, deletedBy string, deletedAt time.Time) error {
	query := `
		UPDATE timesheets
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE timesheet_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, deletedAt, deletedBy, timesheetID)
	if err != nil {
		return fmt.Errorf("failed to soft delete timesheet %s: %w", timesheetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SubmitTimesheetWithApprovals moves a timesheet to SUBMITTED, supersedes any
// previous active approval records and inserts the fresh ones, all inside one
// database transaction.
func (r *PgxTimesheetRepository) SubmitTimesheetWithApprovals(ctx context.Context, timesheetID string, fromStatus domain.TimesheetStatus, approvals []domain.ApprovalRecord, actorID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	statusQuery := `
		UPDATE timesheets
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE timesheet_id = $4 AND status = $5 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, statusQuery, string(domain.StatusSubmitted), at, actorID, timesheetID, string(fromStatus))
	if err != nil {
		return fmt.Errorf("failed to update status of timesheet %s: %w", timesheetID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: timesheet %s is no longer in status %s", apperrors.ErrStateConflict, timesheetID, fromStatus)
	}

	// Previous records survive as history; only the superseded flag moves.
	supersedeQuery := `
		UPDATE approval_records
		SET superseded = TRUE, last_updated_at = $1, last_updated_by = $2
		WHERE timesheet_id = $3 AND superseded = FALSE;
	`
	if _, err := tx.Exec(ctx, supersedeQuery, at, actorID, timesheetID); err != nil {
		return fmt.Errorf("failed to supersede approval records of timesheet %s: %w", timesheetID, err)
	}

	batch := &pgx.Batch{}
	for _, record := range approvals {
		queueApprovalInsert(batch, record)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert approval records for timesheet %s: %w", timesheetID, err)
	}

	return r.Commit(ctx, tx)
}

// FindTimeEntryByID retrieves a single non-deleted time entry.
func (r *PgxTimesheetRepository) FindTimeEntryByID(ctx context.Context, entryID string) (*domain.TimeEntry, error) {
	query := `
		SELECT entry_id, timesheet_id, user_id, project_id, task_id, entry_date, hours, billable, description, deleted_at, created_at, created_by, last_updated_at, last_updated_by
		FROM time_entries
		WHERE entry_id = $1 AND deleted_at IS NULL;
	`
	var m models.TimeEntry
	err := r.Pool.QueryRow(ctx, query, entryID).Scan(
		&m.EntryID,
		&m.TimesheetID,
		&m.UserID,
		&m.ProjectID,
		&m.TaskID,
		&m.EntryDate,
		&m.Hours,
		&m.Billable,
		&m.Description,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find time entry %s: %w", entryID, err)
	}

	entry := mapping.ToDomainTimeEntry(m)
	return &entry, nil
}

// FindEntriesByTimesheetID retrieves all non-deleted entries of a timesheet.
func (r *PgxTimesheetRepository) FindEntriesByTimesheetID(ctx context.Context, timesheetID string) ([]domain.TimeEntry, error) {
	query := `
		SELECT entry_id, timesheet_id, user_id, project_id, task_id, entry_date, hours, billable, description, deleted_at, created_at, created_by, last_updated_at, last_updated_by
		FROM time_entries
		WHERE timesheet_id = $1 AND deleted_at IS NULL
		ORDER BY entry_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of timesheet %s: %w", timesheetID, err)
	}
	defer rows.Close()

	modelEntries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TimeEntry, error) {
		var m models.TimeEntry
		err := row.Scan(
			&m.EntryID,
			&m.TimesheetID,
			&m.UserID,
			&m.ProjectID,
			&m.TaskID,
			&m.EntryDate,
			&m.Hours,
			&m.Billable,
			&m.Description,
			&m.DeletedAt,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan time entries: %w", err)
	}

	return mapping.ToDomainTimeEntrySlice(modelEntries), nil
}

// SaveTimeEntry persists a new time entry.
func (r *PgxTimesheetRepository) SaveTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	m := mapping.ToModelTimeEntry(entry)
	query := `
		INSERT INTO time_entries (entry_id, timesheet_id, user_id, project_id, task_id, entry_date, hours, billable, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.EntryID,
		m.TimesheetID,
		m.UserID,
		m.ProjectID,
		m.TaskID,
		m.EntryDate,
		m.Hours,
		m.Billable,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save time entry %s: %w", m.EntryID, err)
	}
	return nil
}

// UpdateTimeEntry updates the mutable fields of an existing entry.
func (r *PgxTimesheetRepository) UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	m := mapping.ToModelTimeEntry(entry)
	query := `
		UPDATE time_entries
		SET task_id = $1, hours = $2, billable = $3, description = $4, last_updated_at = $5, last_updated_by = $6
		WHERE entry_id = $7 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.TaskID,
		m.Hours,
		m.Billable,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.EntryID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry %s: %w", m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SoftDeleteTimeEntry marks an entry deleted without removing the row.
func (r *PgxTimesheetRepository) SoftDeleteTimeEntry(ctx context.Context, entryID string, deletedBy string, deletedAt time.Time) error {
	query := `
		UPDATE time_entries
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE entry_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, deletedAt, deletedBy, entryID)
	if err != nil {
		return fmt.Errorf("failed to soft delete time entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
