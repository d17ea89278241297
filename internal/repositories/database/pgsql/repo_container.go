package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/worklog-hq/timesheet_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	timesheetRepo := newPgxTimesheetRepository(dbPool)
	approvalRepo := newPgxApprovalRepository(dbPool)
	billingRepo := newPgxBillingRepository(dbPool)
	adjustmentRepo := newPgxAdjustmentRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TimesheetRepo:  timesheetRepo,
		ApprovalRepo:   approvalRepo,
		BillingRepo:    billingRepo,
		AdjustmentRepo: adjustmentRepo,
	}
}
