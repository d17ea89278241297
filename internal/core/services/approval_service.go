package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portsrepo "github.com/worklog-hq/timesheet_backend/internal/core/ports/repositories"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
	"github.com/worklog-hq/timesheet_backend/internal/middleware"
)

// approvalService operates the per-project approval ledger and cascades tier
// decisions back onto the parent timesheet's status.
type approvalService struct {
	approvalRepo  portsrepo.ApprovalRepositoryFacade
	timesheetRepo portsrepo.TimesheetRepositoryFacade
	projectDir    portssvc.ProjectDirectory
	audit         portssvc.AuditSink
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(approvalRepo portsrepo.ApprovalRepositoryFacade, timesheetRepo portsrepo.TimesheetRepositoryFacade, projectDir portssvc.ProjectDirectory, audit portssvc.AuditSink) portssvc.ApprovalSvcFacade {
	return &approvalService{
		approvalRepo:  approvalRepo,
		timesheetRepo: timesheetRepo,
		projectDir:    projectDir,
		audit:         audit,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// ListApprovals retrieves the active approval records of a timesheet.
func (s *approvalService) ListApprovals(ctx context.Context, timesheetID string) ([]domain.ApprovalRecord, error) {
	records, err := s.approvalRepo.FindActiveApprovalsByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve approval records for timesheet %s: %w", timesheetID, err)
	}
	return records, nil
}

// AdvanceApproval applies one reviewer's decision to one tier of one approval
// record. Tiers only move forward; a stale version surfaces as ErrConflict
// for the caller to re-read and retry.
func (s *approvalService) AdvanceApproval(ctx context.Context, approvalID string, req dto.AdvanceApprovalRequest, actorID string) (*domain.ApprovalRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.approvalRepo.FindApprovalByID(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find approval record %s: %w", approvalID, err)
	}
	if record.Superseded {
		return nil, fmt.Errorf("%w: approval record %s has been superseded by a re-submission", apperrors.ErrStateConflict, approvalID)
	}

	ts, err := s.timesheetRepo.FindTimesheetByID(ctx, record.TimesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find timesheet %s: %w", record.TimesheetID, err)
	}
	if ts.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}

	tier := domain.ReviewTier(req.Tier)
	if err := tierActionable(tier, ts.Status); err != nil {
		return nil, err
	}

	current := record.Tier(tier)
	if current.Status == domain.ApprovalNotRequired {
		return nil, fmt.Errorf("%w: %s review is not required for this approval record", apperrors.ErrStateConflict, tier)
	}
	if current.Status.Resolved() {
		return nil, fmt.Errorf("%w: %s tier already resolved to %s", apperrors.ErrStateConflict, tier, current.Status)
	}

	decided := time.Now().UTC()
	decision := domain.TierDecision{
		ActorID:   actorID,
		DecidedAt: &decided,
	}
	rejectReason := ""
	switch req.Decision {
	case dto.DecisionApprove:
		decision.Status = domain.ApprovalApproved
	case dto.DecisionReject:
		if req.Reason == "" {
			return nil, fmt.Errorf("%w: a rejection requires a reason", apperrors.ErrValidation)
		}
		decision.Status = domain.ApprovalRejected
		rejectReason = req.Reason
	default:
		return nil, fmt.Errorf("%w: unknown decision %s", apperrors.ErrValidation, req.Decision)
	}

	if err := s.approvalRepo.UpdateTierDecision(ctx, approvalID, tier, decision, rejectReason, req.Version, actorID, decided); err != nil {
		logger.Warn("Failed to update tier decision", slog.String("error", err.Error()), slog.String("approval_id", approvalID), slog.String("tier", string(tier)))
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "approval.decided",
		ActorID:    actorID,
		EntityID:   approvalID,
		Before:     string(current.Status),
		After:      string(decision.Status),
		OccurredAt: decided,
		Properties: map[string]any{
			"tier":         string(tier),
			"timesheet_id": record.TimesheetID,
			"project_id":   record.ProjectID,
		},
	})

	// Apply the decision to the in-memory record before cascading so the
	// resolution check sees the fresh state.
	switch tier {
	case domain.TierLead:
		record.Lead = decision
	case domain.TierManager:
		record.Manager = decision
	default:
		record.Management = decision
	}
	record.RejectReason = rejectReason
	record.Version++
	record.LastUpdatedAt = decided
	record.LastUpdatedBy = actorID

	if err := s.cascade(ctx, ts, record, tier, decision, actorID, decided); err != nil {
		return nil, err
	}

	logger.Info("Approval tier decided",
		slog.String("approval_id", approvalID),
		slog.String("tier", string(tier)),
		slog.String("status", string(decision.Status)))
	return record, nil
}

// cascade propagates a tier decision onto the parent timesheet. A rejection
// on any tier pushes the timesheet to REJECTED. An approval may advance the
// timesheet to MANAGER_APPROVED then MANAGEMENT_PENDING once every active
// record's pre-management tiers resolve in favour; the management tier only
// gates freezing, which is a separate deliberate call.
func (s *approvalService) cascade(ctx context.Context, ts *domain.Timesheet, updated *domain.ApprovalRecord, tier domain.ReviewTier, decision domain.TierDecision, actorID string, at time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if decision.Status == domain.ApprovalRejected {
		if ts.Status == domain.StatusRejected {
			return nil
		}
		if err := s.timesheetRepo.UpdateTimesheetStatus(ctx, ts.TimesheetID, ts.Status, domain.StatusRejected, false, actorID, at); err != nil {
			logger.Error("Failed to cascade rejection to timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", ts.TimesheetID))
			return fmt.Errorf("failed to cascade rejection: %w", err)
		}
		s.audit.Record(ctx, domain.AuditEvent{
			Event:      "timesheet.rejected",
			ActorID:    actorID,
			EntityID:   ts.TimesheetID,
			Before:     string(ts.Status),
			After:      string(domain.StatusRejected),
			OccurredAt: at,
			Properties: map[string]any{"approval_id": updated.ApprovalID, "tier": string(tier)},
		})
		return nil
	}

	// Approvals on the management tier do not move the timesheet; freezing is
	// its own operation so the final boundary crossing is always deliberate.
	if tier == domain.TierManagement || ts.Status != domain.StatusSubmitted {
		return nil
	}

	records, err := s.approvalRepo.FindActiveApprovalsByTimesheetID(ctx, ts.TimesheetID)
	if err != nil {
		return fmt.Errorf("failed to retrieve approval records for cascade: %w", err)
	}
	for i := range records {
		if records[i].ApprovalID == updated.ApprovalID {
			records[i] = *updated
		}
	}
	for _, rec := range records {
		approved, _ := rec.PreManagementResolved()
		if !approved {
			return nil
		}
	}

	if err := s.timesheetRepo.UpdateTimesheetStatus(ctx, ts.TimesheetID, domain.StatusSubmitted, domain.StatusManagerApproved, false, actorID, at); err != nil {
		return fmt.Errorf("failed to advance timesheet to manager approved: %w", err)
	}
	if err := s.timesheetRepo.UpdateTimesheetStatus(ctx, ts.TimesheetID, domain.StatusManagerApproved, domain.StatusManagementPending, false, actorID, at); err != nil {
		return fmt.Errorf("failed to advance timesheet to management pending: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "timesheet.management_pending",
		ActorID:    actorID,
		EntityID:   ts.TimesheetID,
		Before:     string(domain.StatusSubmitted),
		After:      string(domain.StatusManagementPending),
		OccurredAt: at,
	})
	logger.Info("Timesheet advanced to management pending", slog.String("timesheet_id", ts.TimesheetID))
	return nil
}

// ReconcileMissingApprovalRecords creates pending approval records for
// projects that have entries in the timesheet but no active ledger record.
// This is the only sanctioned repair for that fault; the new records start
// fully pending, so the missing hours re-enter review instead of slipping
// into billing unreviewed.
func (s *approvalService) ReconcileMissingApprovalRecords(ctx context.Context, timesheetID string, actorID string) ([]domain.ApprovalRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ts, err := s.timesheetRepo.FindTimesheetByID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find timesheet %s: %w", timesheetID, err)
	}
	if ts.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	if ts.Status.Editable() {
		return nil, fmt.Errorf("%w: timesheet %s is not in review; re-submit it instead", apperrors.ErrStateConflict, timesheetID)
	}

	entries, err := s.timesheetRepo.FindEntriesByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}
	active, err := s.approvalRepo.FindActiveApprovalsByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve approval records: %w", err)
	}

	missing := missingApprovalProjects(entries, active)
	if len(missing) == 0 {
		return nil, nil
	}

	refs, err := s.projectDir.GetProjectRefs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects: %w", err)
	}

	worked := make(map[string]decimal.Decimal)
	billable := make(map[string]decimal.Decimal)
	for _, e := range entries {
		worked[e.ProjectID] = worked[e.ProjectID].Add(e.Hours)
		if e.Billable {
			billable[e.ProjectID] = billable[e.ProjectID].Add(e.Hours)
		}
	}

	now := time.Now().UTC()
	records := make([]domain.ApprovalRecord, 0, len(missing))
	for _, projectID := range missing {
		leadStatus := domain.ApprovalPending
		if ref, ok := refs[projectID]; ok && !ref.LeadReviewRequired {
			leadStatus = domain.ApprovalNotRequired
		}
		records = append(records, domain.ApprovalRecord{
			ApprovalID:    uuid.NewString(),
			TimesheetID:   timesheetID,
			ProjectID:     projectID,
			Lead:          domain.TierDecision{Status: leadStatus},
			Manager:       domain.TierDecision{Status: domain.ApprovalPending},
			Management:    domain.TierDecision{Status: domain.ApprovalPending},
			WorkedHours:   worked[projectID],
			BillableHours: billable[projectID],
			Version:       1,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		})
	}

	if err := s.approvalRepo.InsertApprovalRecords(ctx, records); err != nil {
		logger.Error("Failed to insert reconciled approval records", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
		return nil, fmt.Errorf("failed to insert approval records: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "approval.reconciled",
		ActorID:    actorID,
		EntityID:   timesheetID,
		OccurredAt: now,
		Properties: map[string]any{"projects": missing},
	})
	logger.Warn("Reconciled missing approval records", slog.String("timesheet_id", timesheetID), slog.Int("count", len(records)))
	return records, nil
}

// tierActionable gates which tier may act in which timesheet status. Lead and
// manager reviews happen while the timesheet sits in SUBMITTED; management
// reviews happen in MANAGEMENT_PENDING.
func tierActionable(tier domain.ReviewTier, status domain.TimesheetStatus) error {
	switch tier {
	case domain.TierLead, domain.TierManager:
		if status != domain.StatusSubmitted {
			return fmt.Errorf("%w: %s review is not actionable while timesheet is %s", apperrors.ErrStateConflict, tier, status)
		}
	case domain.TierManagement:
		if status != domain.StatusManagementPending {
			return fmt.Errorf("%w: management review is not actionable while timesheet is %s", apperrors.ErrStateConflict, status)
		}
	default:
		return fmt.Errorf("%w: unknown review tier %s", apperrors.ErrValidation, tier)
	}
	return nil
}
