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

type PgxApprovalRepository struct {
	BaseRepository
}

// newPgxApprovalRepository creates a new repository for the approval ledger.
func newPgxApprovalRepository(pool *pgxpool.Pool) portsrepo.ApprovalRepositoryFacade {
	return &PgxApprovalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

const approvalColumns = `approval_id, timesheet_id, project_id,
	lead_status, lead_actor_id, lead_decided_at,
	manager_status, manager_actor_id, manager_decided_at,
	management_status, management_actor_id, management_decided_at,
	worked_hours, billable_hours, reject_reason, superseded, version,
	created_at, created_by, last_updated_at, last_updated_by`

const approvalInsertQuery = `
	INSERT INTO approval_records (
		approval_id, timesheet_id, project_id,
		lead_status, lead_actor_id, lead_decided_at,
		manager_status, manager_actor_id, manager_decided_at,
		management_status, management_actor_id, management_decided_at,
		worked_hours, billable_hours, reject_reason, superseded, version,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
`

// queueApprovalInsert adds one approval record insert to a batch. Shared with
// the timesheet repository's submit transaction.
func queueApprovalInsert(batch *pgx.Batch, record domain.ApprovalRecord) {
	m := mapping.ToModelApprovalRecord(record)
	batch.Queue(approvalInsertQuery,
		m.ApprovalID, m.TimesheetID, m.ProjectID,
		m.LeadStatus, m.LeadActorID, m.LeadDecidedAt,
		m.ManagerStatus, m.ManagerActorID, m.ManagerDecidedAt,
		m.ManagementStatus, m.ManagementActorID, m.ManagementDecidedAt,
		m.WorkedHours, m.BillableHours, m.RejectReason, m.Superseded, m.Version,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
}

func scanApproval(row pgx.Row) (models.ApprovalRecord, error) {
	var m models.ApprovalRecord
	err := row.Scan(
		&m.ApprovalID, &m.TimesheetID, &m.ProjectID,
		&m.LeadStatus, &m.LeadActorID, &m.LeadDecidedAt,
		&m.ManagerStatus, &m.ManagerActorID, &m.ManagerDecidedAt,
		&m.ManagementStatus, &m.ManagementActorID, &m.ManagementDecidedAt,
		&m.WorkedHours, &m.BillableHours, &m.RejectReason, &m.Superseded, &m.Version,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// FindApprovalByID retrieves a single approval record.
func (r *PgxApprovalRepository) FindApprovalByID(ctx context.Context, approvalID string) (*domain.ApprovalRecord, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_records WHERE approval_id = $1;`

	m, err := scanApproval(r.Pool.QueryRow(ctx, query, approvalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval record %s: %w", approvalID, err)
	}

	record := mapping.ToDomainApprovalRecord(m)
	return &record, nil
}

// FindActiveApprovalsByTimesheetID retrieves the non-superseded approval
// records of one timesheet.
func (r *PgxApprovalRepository) FindActiveApprovalsByTimesheetID(ctx context.Context, timesheetID string) ([]domain.ApprovalRecord, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_records WHERE timesheet_id = $1 AND superseded = FALSE ORDER BY project_id;`

	rows, err := r.Pool.Query(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval records of timesheet %s: %w", timesheetID, err)
	}
	defer rows.Close()

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ApprovalRecord, error) {
		return scanApproval(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan approval records: %w", err)
	}

	return mapping.ToDomainApprovalRecordSlice(modelRecords), nil
}

// FindActiveApprovalsByTimesheetIDs retrieves active approval records for
// several timesheets at once, grouped by timesheet ID.
func (r *PgxApprovalRepository) FindActiveApprovalsByTimesheetIDs(ctx context.Context, timesheetIDs []string) (map[string][]domain.ApprovalRecord, error) {
	result := make(map[string][]domain.ApprovalRecord, len(timesheetIDs))
	if len(timesheetIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + approvalColumns + ` FROM approval_records WHERE timesheet_id = ANY($1) AND superseded = FALSE ORDER BY timesheet_id, project_id;`

	rows, err := r.Pool.Query(ctx, query, timesheetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval records: %w", err)
	}
	defer rows.Close()

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ApprovalRecord, error) {
		return scanApproval(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan approval records: %w", err)
	}

	for _, m := range modelRecords {
		result[m.TimesheetID] = append(result[m.TimesheetID], mapping.ToDomainApprovalRecord(m))
	}
	return result, nil
}

// InsertApprovalRecords batch-inserts new approval records.
func (r *PgxApprovalRepository) InsertApprovalRecords(ctx context.Context, records []domain.ApprovalRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		queueApprovalInsert(batch, record)
	}
	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert approval records: %w", err)
	}
	return nil
}

// UpdateTierDecision advances one tier of one approval record. The update is
// guarded on version so a lost reviewer race surfaces as ErrConflict instead
// of a silent overwrite.
func (r *PgxApprovalRepository) UpdateTierDecision(ctx context.Context, approvalID string, tier domain.ReviewTier, decision domain.TierDecision, rejectReason string, expectedVersion int64, updatedBy string, updatedAt time.Time) error {
	var statusCol, actorCol, decidedCol string
	switch tier {
	case domain.TierLead:
		statusCol, actorCol, decidedCol = "lead_status", "lead_actor_id", "lead_decided_at"
	case domain.TierManager:
		statusCol, actorCol, decidedCol = "manager_status", "manager_actor_id", "manager_decided_at"
	case domain.TierManagement:
		statusCol, actorCol, decidedCol = "management_status", "management_actor_id", "management_decided_at"
	default:
		return fmt.Errorf("%w: unknown review tier %s", apperrors.ErrValidation, tier)
	}

	query := fmt.Sprintf(`
		UPDATE approval_records
		SET %s = $1, %s = $2, %s = $3, reject_reason = $4, version = version + 1, last_updated_at = $5, last_updated_by = $6
		WHERE approval_id = $7 AND version = $8 AND superseded = FALSE;
	`, statusCol, actorCol, decidedCol)

	cmdTag, err := r.Pool.Exec(ctx, query,
		string(decision.Status),
		decision.ActorID,
		decision.DecidedAt,
		rejectReason,
		updatedAt,
		updatedBy,
		approvalID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s decision of approval record %s: %w", tier, approvalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: approval record %s was modified concurrently, re-read and retry", apperrors.ErrConflict, approvalID)
	}
	return nil
}
