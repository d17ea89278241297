package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portsrepo "github.com/worklog-hq/timesheet_backend/internal/core/ports/repositories"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
	"github.com/worklog-hq/timesheet_backend/internal/middleware"
	"github.com/worklog-hq/timesheet_backend/internal/utils/dates"
)

// billingService is the read-only aggregation engine plus the invoicing-facing
// effective-hours lookup. It holds no state and takes no locks; every run
// recomputes from the current rows.
type billingService struct {
	billingRepo    portsrepo.BillingReader
	approvalRepo   portsrepo.ApprovalRepositoryFacade
	adjustmentRepo portsrepo.AdjustmentReader
}

// NewBillingService creates a new BillingService.
func NewBillingService(billingRepo portsrepo.BillingReader, approvalRepo portsrepo.ApprovalRepositoryFacade, adjustmentRepo portsrepo.AdjustmentReader) portssvc.BillingSvcFacade {
	return &billingService{
		billingRepo:    billingRepo,
		approvalRepo:   approvalRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

var _ portssvc.BillingSvcFacade = (*billingService)(nil)

type lineKey struct {
	userID    string
	projectID string
}

// AggregateBilling computes worked and billable hour totals per (user,
// project) over the closed [start, end] interval. Only hours behind a
// management-approved approval record count; everything excluded is flagged
// as a fault so a zero line is never ambiguous.
func (s *billingService) AggregateBilling(ctx context.Context, start, end time.Time) (*domain.BillingAggregate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	start, end, err := dates.ValidatePeriod(start, end)
	if err != nil {
		return nil, err
	}

	timesheets, err := s.billingRepo.FindActiveTimesheetsOverlapping(ctx, start, end)
	if err != nil {
		logger.Error("Failed to find overlapping timesheets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find timesheets for aggregation: %w", err)
	}

	agg := &domain.BillingAggregate{PeriodStart: start, PeriodEnd: end}
	if len(timesheets) == 0 {
		agg.Lines = []domain.BillingLine{}
		return agg, nil
	}

	timesheetIDs := make([]string, len(timesheets))
	for i, ts := range timesheets {
		timesheetIDs[i] = ts.TimesheetID
	}
	approvalsByTimesheet, err := s.approvalRepo.FindActiveApprovalsByTimesheetIDs(ctx, timesheetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve approval records for aggregation: %w", err)
	}

	totals := make(map[lineKey]*domain.EntrySums)
	for _, ts := range timesheets {
		// A timesheet whose stored bounds disagree with the week invariant is
		// excluded and flagged, never guessed at.
		if err := dates.ValidateWeekBounds(ts.WeekStart, ts.WeekEnd); err != nil {
			agg.Faults = append(agg.Faults, domain.BillingFault{
				TimesheetID: ts.TimesheetID,
				UserID:      ts.UserID,
				Kind:        domain.FaultIntegrity,
				Detail:      err.Error(),
			})
			continue
		}

		sums, err := s.billingRepo.SumEntryHoursByProject(ctx, ts.TimesheetID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to sum entry hours for timesheet %s: %w", ts.TimesheetID, err)
		}
		if len(sums) == 0 {
			continue
		}

		approvalByProject := make(map[string]*domain.ApprovalRecord)
		for i := range approvalsByTimesheet[ts.TimesheetID] {
			rec := &approvalsByTimesheet[ts.TimesheetID][i]
			approvalByProject[rec.ProjectID] = rec
		}

		for projectID, projectSums := range sums {
			rec, ok := approvalByProject[projectID]
			if !ok {
				agg.Faults = append(agg.Faults, domain.BillingFault{
					TimesheetID: ts.TimesheetID,
					UserID:      ts.UserID,
					ProjectID:   projectID,
					Kind:        domain.FaultMissingApproval,
					Detail:      "entries exist but no active approval record covers them",
				})
				continue
			}
			if rec.Management.Status != domain.ApprovalApproved {
				continue
			}

			key := lineKey{userID: ts.UserID, projectID: projectID}
			if totals[key] == nil {
				totals[key] = &domain.EntrySums{}
			}
			totals[key].WorkedHours = totals[key].WorkedHours.Add(projectSums.WorkedHours)
			totals[key].BillableHours = totals[key].BillableHours.Add(projectSums.BillableHours)
		}
	}

	agg.Lines = make([]domain.BillingLine, 0, len(totals))
	for key, sums := range totals {
		agg.Lines = append(agg.Lines, domain.BillingLine{
			UserID:        key.userID,
			ProjectID:     key.projectID,
			PeriodStart:   start,
			PeriodEnd:     end,
			WorkedHours:   sums.WorkedHours,
			BillableHours: sums.BillableHours,
		})
	}
	sort.Slice(agg.Lines, func(i, j int) bool {
		if agg.Lines[i].UserID != agg.Lines[j].UserID {
			return agg.Lines[i].UserID < agg.Lines[j].UserID
		}
		return agg.Lines[i].ProjectID < agg.Lines[j].ProjectID
	})

	logger.Info("Billing aggregation completed",
		slog.Int("lines", len(agg.Lines)),
		slog.Int("faults", len(agg.Faults)))
	return agg, nil
}

// EffectiveBillableHours answers the invoicing question for one exact
// (user, project, period) scope key: the adjusted figure when an active
// adjustment exists, else the raw aggregate. If the aggregation flagged a
// fault for this user and project the call errors instead of handing
// invoicing a silently wrong zero.
func (s *billingService) EffectiveBillableHours(ctx context.Context, userID, projectID string, periodStart, periodEnd time.Time) (*dto.EffectiveBillableHoursResponse, error) {
	periodStart, periodEnd, err := dates.ValidatePeriod(periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	resp := &dto.EffectiveBillableHoursResponse{
		UserID:      userID,
		ProjectID:   projectID,
		PeriodStart: dto.FormatDate(periodStart),
		PeriodEnd:   dto.FormatDate(periodEnd),
	}

	adj, err := s.adjustmentRepo.FindActiveAdjustmentByScope(ctx, userID, projectID, periodStart, periodEnd)
	if err == nil {
		resp.BillableHours = adj.AdjustedBillableHours
		resp.Source = dto.SourceAdjusted
		resp.AdjustmentID = adj.AdjustmentID
		return resp, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up adjustment: %w", err)
	}

	agg, err := s.AggregateBilling(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	for _, f := range agg.Faults {
		if f.UserID == userID && (f.ProjectID == "" || f.ProjectID == projectID) {
			return nil, fmt.Errorf("%w: aggregation flagged timesheet %s (%s): %s",
				apperrors.ErrMissingApproval, f.TimesheetID, f.Kind, f.Detail)
		}
	}

	resp.BillableHours = decimal.Zero
	for _, line := range agg.Lines {
		if line.UserID == userID && line.ProjectID == projectID {
			resp.BillableHours = line.BillableHours
			break
		}
	}
	resp.Source = dto.SourceAggregated
	return resp, nil
}
