package services

import (
	"context"
	"errors"
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
	"github.com/worklog-hq/timesheet_backend/internal/utils/dates"
)

// adjustmentService manages the billing adjustment overlay. Adjustments never
// touch time entries; they override the aggregated billable total for one
// exact (user, project, period) scope key.
type adjustmentService struct {
	adjustmentRepo portsrepo.AdjustmentRepositoryFacade
	billing        portssvc.BillingSvcFacade
	audit          portssvc.AuditSink
}

// NewAdjustmentService creates a new AdjustmentService.
func NewAdjustmentService(adjustmentRepo portsrepo.AdjustmentRepositoryFacade, billing portssvc.BillingSvcFacade, audit portssvc.AuditSink) portssvc.AdjustmentSvcFacade {
	return &adjustmentService{
		adjustmentRepo: adjustmentRepo,
		billing:        billing,
		audit:          audit,
	}
}

var _ portssvc.AdjustmentSvcFacade = (*adjustmentService)(nil)

// CreateAdjustment creates the single active adjustment for a scope key,
// snapshotting the aggregation baseline at creation time. Not an upsert: a
// second create on an occupied scope key fails with ErrConflict.
func (s *adjustmentService) CreateAdjustment(ctx context.Context, req dto.CreateAdjustmentRequest, actorID string) (*domain.BillingAdjustment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	periodStart, periodEnd, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	worked, billable, err := s.baseline(ctx, req.UserID, req.ProjectID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	adj := buildAdjustment(req.UserID, req.ProjectID, periodStart, periodEnd, worked, billable, req.AdjustmentHours, req.Reason, actorID, now)
	event := domain.AdjustmentEvent{
		EventID:      uuid.NewString(),
		AdjustmentID: adj.AdjustmentID,
		Kind:         domain.AdjustmentCreated,
		ActorID:      actorID,
		Reason:       req.Reason,
		OccurredAt:   now,
	}

	if err := s.adjustmentRepo.CreateAdjustment(ctx, adj, event); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: an active adjustment already exists for this scope; supersede it instead", apperrors.ErrConflict)
		}
		logger.Error("Failed to create adjustment", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create adjustment: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "adjustment.created",
		ActorID:    actorID,
		EntityID:   adj.AdjustmentID,
		After:      adj.AdjustedBillableHours.String(),
		OccurredAt: now,
		Properties: map[string]any{
			"user_id":          req.UserID,
			"project_id":       req.ProjectID,
			"adjustment_hours": req.AdjustmentHours.String(),
		},
	})
	logger.Info("Adjustment created", slog.String("adjustment_id", adj.AdjustmentID))
	return &adj, nil
}

// SupersedeAdjustment retires an existing active adjustment and installs its
// replacement for the same scope key in one atomic step. The baseline is
// recomputed from the current aggregate, not copied from the old record.
func (s *adjustmentService) SupersedeAdjustment(ctx context.Context, existingID string, req dto.SupersedeAdjustmentRequest, actorID string) (*domain.BillingAdjustment, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.adjustmentRepo.FindAdjustmentByID(ctx, existingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find adjustment %s: %w", existingID, err)
	}
	if !existing.Active() {
		return nil, fmt.Errorf("%w: adjustment %s is deleted and cannot be superseded", apperrors.ErrStateConflict, existingID)
	}

	worked, billable, err := s.baseline(ctx, existing.UserID, existing.ProjectID, existing.PeriodStart, existing.PeriodEnd)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	replacement := buildAdjustment(existing.UserID, existing.ProjectID, existing.PeriodStart, existing.PeriodEnd, worked, billable, req.AdjustmentHours, req.Reason, actorID, now)
	events := []domain.AdjustmentEvent{
		{
			EventID:      uuid.NewString(),
			AdjustmentID: existingID,
			Kind:         domain.AdjustmentSuperseded,
			ActorID:      actorID,
			Reason:       req.Reason,
			OccurredAt:   now,
		},
		{
			EventID:      uuid.NewString(),
			AdjustmentID: replacement.AdjustmentID,
			Kind:         domain.AdjustmentCreated,
			ActorID:      actorID,
			Reason:       req.Reason,
			OccurredAt:   now,
		},
	}

	if err := s.adjustmentRepo.SupersedeAdjustment(ctx, existingID, replacement, events); err != nil {
		logger.Warn("Failed to supersede adjustment", slog.String("error", err.Error()), slog.String("adjustment_id", existingID))
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "adjustment.superseded",
		ActorID:    actorID,
		EntityID:   existingID,
		Before:     existing.AdjustedBillableHours.String(),
		After:      replacement.AdjustedBillableHours.String(),
		OccurredAt: now,
		Properties: map[string]any{"replacement_id": replacement.AdjustmentID},
	})
	logger.Info("Adjustment superseded",
		slog.String("old_adjustment_id", existingID),
		slog.String("new_adjustment_id", replacement.AdjustmentID))
	return &replacement, nil
}

// SoftDeleteAdjustment retires an active adjustment. The scope key falls back
// to the raw aggregate until a new adjustment (or a restore) takes it.
func (s *adjustmentService) SoftDeleteAdjustment(ctx context.Context, adjustmentID string, actorID string) error {
	adj, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID)
	if err != nil {
		return fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}
	if !adj.Active() {
		return fmt.Errorf("%w: adjustment %s is already deleted", apperrors.ErrStateConflict, adjustmentID)
	}

	now := time.Now().UTC()
	event := domain.AdjustmentEvent{
		EventID:      uuid.NewString(),
		AdjustmentID: adjustmentID,
		Kind:         domain.AdjustmentDeleted,
		ActorID:      actorID,
		OccurredAt:   now,
	}
	if err := s.adjustmentRepo.SoftDeleteAdjustment(ctx, adjustmentID, actorID, now, event); err != nil {
		return err
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "adjustment.deleted",
		ActorID:    actorID,
		EntityID:   adjustmentID,
		OccurredAt: now,
	})
	return nil
}

// RestoreAdjustment re-activates a soft-deleted adjustment. If another active
// adjustment has taken the scope key in the meantime the restore fails with
// ErrConflict; restoring never merges and never evicts.
func (s *adjustmentService) RestoreAdjustment(ctx context.Context, adjustmentID string, actorID string) (*domain.BillingAdjustment, error) {
	adj, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}
	if adj.Active() {
		return nil, fmt.Errorf("%w: adjustment %s is already active", apperrors.ErrStateConflict, adjustmentID)
	}

	occupant, err := s.adjustmentRepo.FindActiveAdjustmentByScope(ctx, adj.UserID, adj.ProjectID, adj.PeriodStart, adj.PeriodEnd)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check scope occupancy: %w", err)
	}
	if occupant != nil {
		return nil, fmt.Errorf("%w: adjustment %s already occupies this scope", apperrors.ErrConflict, occupant.AdjustmentID)
	}

	now := time.Now().UTC()
	event := domain.AdjustmentEvent{
		EventID:      uuid.NewString(),
		AdjustmentID: adjustmentID,
		Kind:         domain.AdjustmentRestored,
		ActorID:      actorID,
		OccurredAt:   now,
	}
	if err := s.adjustmentRepo.RestoreAdjustment(ctx, adjustmentID, actorID, now, event); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "adjustment.restored",
		ActorID:    actorID,
		EntityID:   adjustmentID,
		OccurredAt: now,
	})

	adj.DeletedAt = nil
	adj.LastUpdatedAt = now
	adj.LastUpdatedBy = actorID
	return adj, nil
}

// GetAdjustmentByID retrieves an adjustment, deleted or not.
func (s *adjustmentService) GetAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.BillingAdjustment, error) {
	adj, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}
	return adj, nil
}

// ListAdjustmentHistory retrieves the append-only decision log, oldest first.
func (s *adjustmentService) ListAdjustmentHistory(ctx context.Context, adjustmentID string) ([]domain.AdjustmentEvent, error) {
	if _, err := s.adjustmentRepo.FindAdjustmentByID(ctx, adjustmentID); err != nil {
		return nil, fmt.Errorf("failed to find adjustment %s: %w", adjustmentID, err)
	}
	events, err := s.adjustmentRepo.ListAdjustmentEvents(ctx, adjustmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve adjustment events: %w", err)
	}
	return events, nil
}

// baseline snapshots the aggregation engine's current totals for a scope key.
func (s *adjustmentService) baseline(ctx context.Context, userID, projectID string, periodStart, periodEnd time.Time) (worked, billable decimal.Decimal, err error) {
	agg, err := s.billing.AggregateBilling(ctx, periodStart, periodEnd)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	for _, f := range agg.Faults {
		if f.UserID == userID && (f.ProjectID == "" || f.ProjectID == projectID) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: cannot adjust against a faulted aggregate: %s", apperrors.ErrStateConflict, f.Detail)
		}
	}
	for _, line := range agg.Lines {
		if line.UserID == userID && line.ProjectID == projectID {
			return line.WorkedHours, line.BillableHours, nil
		}
	}
	return decimal.Zero, decimal.Zero, nil
}

func buildAdjustment(userID, projectID string, periodStart, periodEnd time.Time, worked, billable, delta decimal.Decimal, reason, actorID string, now time.Time) domain.BillingAdjustment {
	return domain.BillingAdjustment{
		AdjustmentID:          uuid.NewString(),
		UserID:                userID,
		ProjectID:             projectID,
		PeriodStart:           periodStart,
		PeriodEnd:             periodEnd,
		TotalWorkedHours:      worked,
		OriginalBillableHours: billable,
		AdjustmentHours:       delta,
		TotalBillableHours:    clampZero(worked.Add(delta)),
		AdjustedBillableHours: clampZero(billable.Add(delta)),
		Reason:                reason,
		ActorID:               actorID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := dto.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := dto.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return dates.ValidatePeriod(start, end)
}
