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
)

type PgxAdjustmentRepository struct {
	BaseRepository
}

// newPgxAdjustmentRepository creates a new repository for billing adjustments.
func newPgxAdjustmentRepository(pool *pgxpool.Pool) portsrepo.AdjustmentRepositoryFacade {
	return &PgxAdjustmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.AdjustmentRepositoryFacade = (*PgxAdjustmentRepository)(nil)

const adjustmentColumns = `adjustment_id, user_id, project_id, period_start, period_end,
	total_worked_hours, original_billable_hours, adjustment_hours,
	total_billable_hours, adjusted_billable_hours,
	reason, actor_id, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

const adjustmentInsertQuery = `
	INSERT INTO billing_adjustments (
		adjustment_id, user_id, project_id, period_start, period_end,
		total_worked_hours, original_billable_hours, adjustment_hours,
		total_billable_hours, adjusted_billable_hours,
		reason, actor_id,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
`

const eventInsertQuery = `
	INSERT INTO billing_adjustment_events (event_id, adjustment_id, kind, actor_id, reason, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6);
`

func scanAdjustment(row pgx.Row) (models.BillingAdjustment, error) {
	var m models.BillingAdjustment
	err := row.Scan(
		&m.AdjustmentID, &m.UserID, &m.ProjectID, &m.PeriodStart, &m.PeriodEnd,
		&m.TotalWorkedHours, &m.OriginalBillableHours, &m.AdjustmentHours,
		&m.TotalBillableHours, &m.AdjustedBillableHours,
		&m.Reason, &m.ActorID, &m.DeletedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func adjustmentInsertArgs(m models.BillingAdjustment) []interface{} {
	return []interface{}{
		m.AdjustmentID, m.UserID, m.ProjectID, m.PeriodStart, m.PeriodEnd,
		m.TotalWorkedHours, m.OriginalBillableHours, m.AdjustmentHours,
		m.TotalBillableHours, m.AdjustedBillableHours,
		m.Reason, m.ActorID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// FindAdjustmentByID retrieves an adjustment, deleted or not.
func (r *PgxAdjustmentRepository) FindAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.BillingAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM billing_adjustments WHERE adjustment_id = $1;`

	m, err := scanAdjustment(r.Pool.QueryRow(ctx, query, adjustmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}

	adj := mapping.ToDomainAdjustment(m)
	return &adj, nil
}

// FindActiveAdjustmentByScope retrieves the single non-deleted adjustment for
// an exact scope key. The match is exact on all four parts; overlapping
// periods are different keys.
func (r *PgxAdjustmentRepository) FindActiveAdjustmentByScope(ctx context.Context, userID, projectID string, periodStart, periodEnd time.Time) (*domain.BillingAdjustment, error) {
	query := `SELECT ` + adjustmentColumns + `
		FROM billing_adjustments
		WHERE user_id = $1 AND project_id = $2 AND period_start = $3 AND period_end = $4 AND deleted_at IS NULL;`

	m, err := scanAdjustment(r.Pool.QueryRow(ctx, query, userID, projectID, periodStart, periodEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find adjustment by scope: %w", err)
	}

	adj := mapping.ToDomainAdjustment(m)
	return &adj, nil
}

// ListAdjustmentEvents retrieves the append-only decision log, oldest first.
func (r *PgxAdjustmentRepository) ListAdjustmentEvents(ctx context.Context, adjustmentID string) ([]domain.AdjustmentEvent, error) {
	query := `
		SELECT event_id, adjustment_id, kind, actor_id, reason, occurred_at
		FROM billing_adjustment_events
		WHERE adjustment_id = $1
		ORDER BY occurred_at, event_id;
	`
	rows, err := r.Pool.Query(ctx, query, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustment events of %s: %w", adjustmentID, err)
	}
	defer rows.Close()

	modelEvents, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AdjustmentEvent, error) {
		var m models.AdjustmentEvent
		err := row.Scan(&m.EventID, &m.AdjustmentID, &m.Kind, &m.ActorID, &m.Reason, &m.OccurredAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan adjustment events: %w", err)
	}

	events := make([]domain.AdjustmentEvent, len(modelEvents))
	for i, m := range modelEvents {
		events[i] = mapping.ToDomainAdjustmentEvent(m)
	}
	return events, nil
}

// CreateAdjustment inserts a new active adjustment and its CREATED log row in
// one transaction. The partial unique index over non-deleted rows turns a
// concurrent create on the same scope key into ErrConflict.
func (r *PgxAdjustmentRepository) CreateAdjustment(ctx context.Context, adjustment domain.BillingAdjustment, event domain.AdjustmentEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelAdjustment(adjustment)
	if _, err := tx.Exec(ctx, adjustmentInsertQuery, adjustmentInsertArgs(m)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: an active adjustment already exists for this scope", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert adjustment %s: %w", m.AdjustmentID, err)
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SupersedeAdjustment soft-deletes the existing adjustment and inserts its
// replacement in one transaction, so no reader ever sees zero or two active
// records for the scope key.
func (r *PgxAdjustmentRepository) SupersedeAdjustment(ctx context.Context, existingID string, replacement domain.BillingAdjustment, events []domain.AdjustmentEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelAdjustment(replacement)
	retireQuery := `
		UPDATE billing_adjustments
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE adjustment_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, retireQuery, m.CreatedAt, m.CreatedBy, existingID)
	if err != nil {
		return fmt.Errorf("failed to retire adjustment %s: %w", existingID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: adjustment %s was deleted or superseded concurrently", apperrors.ErrConflict, existingID)
	}

	if _, err := tx.Exec(ctx, adjustmentInsertQuery, adjustmentInsertArgs(m)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: another adjustment took this scope concurrently", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to insert replacement adjustment %s: %w", m.AdjustmentID, err)
	}

	for _, event := range events {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// SoftDeleteAdjustment marks an active adjustment deleted and appends its
// DELETED log row.
func (r *PgxAdjustmentRepository) SoftDeleteAdjustment(ctx context.Context, adjustmentID string, deletedBy string, deletedAt time.Time, event domain.AdjustmentEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE billing_adjustments
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE adjustment_id = $3 AND deleted_at IS NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, deletedAt, deletedBy, adjustmentID)
	if err != nil {
		return fmt.Errorf("failed to soft delete adjustment %s: %w", adjustmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: adjustment %s is already deleted", apperrors.ErrConflict, adjustmentID)
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// RestoreAdjustment clears the soft-delete marker and appends a RESTORED log
// row. The partial unique index re-checks scope uniqueness on the way back.
func (r *PgxAdjustmentRepository) RestoreAdjustment(ctx context.Context, adjustmentID string, restoredBy string, restoredAt time.Time, event domain.AdjustmentEvent) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE billing_adjustments
		SET deleted_at = NULL, last_updated_at = $1, last_updated_by = $2
		WHERE adjustment_id = $3 AND deleted_at IS NOT NULL;
	`
	cmdTag, err := tx.Exec(ctx, query, restoredAt, restoredBy, adjustmentID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: another active adjustment occupies this scope", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to restore adjustment %s: %w", adjustmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: adjustment %s is not deleted", apperrors.ErrConflict, adjustmentID)
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func insertEvent(ctx context.Context, tx pgx.Tx, event domain.AdjustmentEvent) error {
	_, err := tx.Exec(ctx, eventInsertQuery,
		event.EventID,
		event.AdjustmentID,
		string(event.Kind),
		event.ActorID,
		event.Reason,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert adjustment event %s: %w", event.EventID, err)
	}
	return nil
}
