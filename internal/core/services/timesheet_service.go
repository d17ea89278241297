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

var (
	// maxDailyHours caps a single entry; more than a full day in one entry
	// is always a data error.
	maxDailyHours = decimal.NewFromInt(24)
	// maxWeeklyHours caps the sum of a timesheet's entries at 7 * 24.
	maxWeeklyHours = decimal.NewFromInt(168)
)

// timesheetService drives the weekly timesheet lifecycle.
type timesheetService struct {
	timesheetRepo portsrepo.TimesheetRepositoryFacade
	approvalRepo  portsrepo.ApprovalRepositoryFacade
	projectDir    portssvc.ProjectDirectory
	audit         portssvc.AuditSink
}

// NewTimesheetService creates a new TimesheetService.
func NewTimesheetService(timesheetRepo portsrepo.TimesheetRepositoryFacade, approvalRepo portsrepo.ApprovalRepositoryFacade, projectDir portssvc.ProjectDirectory, audit portssvc.AuditSink) portssvc.TimesheetSvcFacade {
	return &timesheetService{
		timesheetRepo: timesheetRepo,
		approvalRepo:  approvalRepo,
		projectDir:    projectDir,
		audit:         audit,
	}
}

var _ portssvc.TimesheetSvcFacade = (*timesheetService)(nil)

// CreateTimesheet opens a new draft timesheet for the given UTC Monday.
func (s *timesheetService) CreateTimesheet(ctx context.Context, req dto.CreateTimesheetRequest, creatorUserID string) (*domain.Timesheet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	requested, err := dto.ParseDate(req.WeekStart)
	if err != nil {
		return nil, err
	}
	weekStart, err := dates.ValidateWeekStart(requested)
	if err != nil {
		return nil, err
	}

	// One timesheet per user per week.
	existing, err := s.timesheetRepo.FindTimesheetByUserAndWeek(ctx, creatorUserID, weekStart)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing timesheet", slog.String("error", err.Error()), slog.String("user_id", creatorUserID))
		return nil, fmt.Errorf("failed to check for existing timesheet: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: timesheet for week %s already exists", apperrors.ErrDuplicate, dto.FormatDate(weekStart))
	}

	now := time.Now().UTC()
	ts := domain.Timesheet{
		TimesheetID: uuid.NewString(),
		UserID:      creatorUserID,
		WeekStart:   weekStart,
		WeekEnd:     dates.WeekEnd(weekStart),
		Status:      domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.timesheetRepo.SaveTimesheet(ctx, ts); err != nil {
		logger.Error("Failed to save timesheet", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save timesheet: %w", err)
	}

	logger.Info("Timesheet created", slog.String("timesheet_id", ts.TimesheetID), slog.String("week_start", dto.FormatDate(weekStart)))
	return &ts, nil
}

// GetTimesheetByID retrieves a timesheet with its active entries.
// Soft-deleted timesheets are absent, not empty.
func (s *timesheetService) GetTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error) {
	ts, err := s.loadActiveTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}

	entries, err := s.timesheetRepo.FindEntriesByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries for timesheet %s: %w", timesheetID, err)
	}
	ts.Entries = entries
	return ts, nil
}

// ListTimesheetsByUser retrieves a page of a user's timesheets.
func (s *timesheetService) ListTimesheetsByUser(ctx context.Context, userID string, params dto.ListTimesheetsParams) (*dto.ListTimesheetsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	timesheets, nextToken, err := s.timesheetRepo.ListTimesheetsByUser(ctx, userID, params.Limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list timesheets", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to retrieve timesheets: %w", err)
	}

	resp := &dto.ListTimesheetsResponse{
		Timesheets: make([]dto.TimesheetResponse, len(timesheets)),
		NextToken:  nextToken,
	}
	for i := range timesheets {
		resp.Timesheets[i] = dto.ToTimesheetResponse(&timesheets[i])
	}
	return resp, nil
}

// AddTimeEntry creates an entry under an editable timesheet.
func (s *timesheetService) AddTimeEntry(ctx context.Context, timesheetID string, req dto.CreateTimeEntryRequest, actorID string) (*domain.TimeEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ts, err := s.loadEditableOwnedTimesheet(ctx, timesheetID, actorID)
	if err != nil {
		return nil, err
	}

	entryDate, err := dto.ParseDate(req.EntryDate)
	if err != nil {
		return nil, err
	}
	if !dates.WithinWeek(entryDate, ts.WeekStart) {
		return nil, fmt.Errorf("%w: entry date %s is outside the timesheet week starting %s",
			apperrors.ErrValidation, dto.FormatDate(entryDate), dto.FormatDate(ts.WeekStart))
	}
	if err := validateEntryHours(req.Hours); err != nil {
		return nil, err
	}

	entries, err := s.timesheetRepo.FindEntriesByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries for weekly total check: %w", err)
	}
	if err := validateWeeklyTotal(entries, "", req.Hours); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.TimeEntry{
		EntryID:     uuid.NewString(),
		TimesheetID: timesheetID,
		UserID:      ts.UserID,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		EntryDate:   entryDate,
		Hours:       req.Hours,
		Billable:    req.Billable,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.timesheetRepo.SaveTimeEntry(ctx, entry); err != nil {
		logger.Error("Failed to save time entry", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
		return nil, fmt.Errorf("failed to save time entry: %w", err)
	}

	logger.Debug("Time entry added", slog.String("entry_id", entry.EntryID), slog.String("timesheet_id", timesheetID))
	return &entry, nil
}

// UpdateTimeEntry edits an entry under an editable timesheet.
func (s *timesheetService) UpdateTimeEntry(ctx context.Context, timesheetID, entryID string, req dto.UpdateTimeEntryRequest, actorID string) (*domain.TimeEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.loadEditableOwnedTimesheet(ctx, timesheetID, actorID); err != nil {
		return nil, err
	}

	entry, err := s.timesheetRepo.FindTimeEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find time entry %s: %w", entryID, err)
	}
	if entry.TimesheetID != timesheetID {
		return nil, apperrors.ErrNotFound
	}

	updated := false
	if req.Hours != nil {
		if err := validateEntryHours(*req.Hours); err != nil {
			return nil, err
		}
		entry.Hours = *req.Hours
		updated = true
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
		updated = true
	}
	if req.Description != nil {
		entry.Description = *req.Description
		updated = true
	}
	if req.TaskID != nil {
		entry.TaskID = req.TaskID
		updated = true
	}
	if !updated {
		return entry, nil
	}

	if req.Hours != nil {
		entries, err := s.timesheetRepo.FindEntriesByTimesheetID(ctx, timesheetID)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve entries for weekly total check: %w", err)
		}
		if err := validateWeeklyTotal(entries, entryID, *req.Hours); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID

	if err := s.timesheetRepo.UpdateTimeEntry(ctx, *entry); err != nil {
		logger.Error("Failed to update time entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}
	return entry, nil
}

// RemoveTimeEntry soft-deletes an entry under an editable timesheet.
func (s *timesheetService) RemoveTimeEntry(ctx context.Context, timesheetID, entryID string, actorID string) error {
	if _, err := s.loadEditableOwnedTimesheet(ctx, timesheetID, actorID); err != nil {
		return err
	}

	entry, err := s.timesheetRepo.FindTimeEntryByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to find time entry %s: %w", entryID, err)
	}
	if entry.TimesheetID != timesheetID {
		return apperrors.ErrNotFound
	}

	return s.timesheetRepo.SoftDeleteTimeEntry(ctx, entryID, actorID, time.Now().UTC())
}

// SubmitTimesheet moves a draft (or rejected) timesheet into review. One
// fresh approval record is created per distinct project referenced by the
// entries; any records left over from a previous submission are superseded,
// never mutated, so the decision history survives.
func (s *timesheetService) SubmitTimesheet(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ts, err := s.loadActiveTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if ts.UserID != actorID {
		return nil, fmt.Errorf("%w: only the owning user may submit a timesheet", apperrors.ErrForbidden)
	}
	if !ts.Status.Editable() {
		return nil, fmt.Errorf("%w: cannot submit timesheet in status %s", apperrors.ErrStateConflict, ts.Status)
	}

	entries, err := s.timesheetRepo.FindEntriesByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries for submit: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: timesheet has no time entries", apperrors.ErrStateConflict)
	}

	records, err := s.buildApprovalRecords(ctx, ts, entries, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.timesheetRepo.SubmitTimesheetWithApprovals(ctx, timesheetID, ts.Status, records, actorID, now); err != nil {
		logger.Error("Failed to submit timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
		return nil, fmt.Errorf("failed to submit timesheet: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "timesheet.submitted",
		ActorID:    actorID,
		EntityID:   timesheetID,
		Before:     string(ts.Status),
		After:      string(domain.StatusSubmitted),
		OccurredAt: now,
		Properties: map[string]any{"approval_records": len(records)},
	})

	ts.Status = domain.StatusSubmitted
	ts.LastUpdatedAt = now
	ts.LastUpdatedBy = actorID
	logger.Info("Timesheet submitted", slog.String("timesheet_id", timesheetID), slog.Int("approval_records", len(records)))
	return ts, nil
}

// buildApprovalRecords assembles one pending approval record per distinct
// project referenced by the entries, with worked/billable hour snapshots.
// Lead review is pending only where the project requires it. The management
// tier is recorded as pending from the start; it becomes actionable once the
// timesheet reaches MANAGEMENT_PENDING.
func (s *timesheetService) buildApprovalRecords(ctx context.Context, ts *domain.Timesheet, entries []domain.TimeEntry, actorID string) ([]domain.ApprovalRecord, error) {
	worked := make(map[string]decimal.Decimal)
	billable := make(map[string]decimal.Decimal)
	projectIDs := make([]string, 0)
	for _, e := range entries {
		if _, seen := worked[e.ProjectID]; !seen {
			projectIDs = append(projectIDs, e.ProjectID)
			worked[e.ProjectID] = decimal.Zero
			billable[e.ProjectID] = decimal.Zero
		}
		worked[e.ProjectID] = worked[e.ProjectID].Add(e.Hours)
		if e.Billable {
			billable[e.ProjectID] = billable[e.ProjectID].Add(e.Hours)
		}
	}

	refs, err := s.projectDir.GetProjectRefs(ctx, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve projects: %w", err)
	}

	now := time.Now().UTC()
	records := make([]domain.ApprovalRecord, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		ref, ok := refs[projectID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown project %s referenced by time entries", apperrors.ErrValidation, projectID)
		}

		leadStatus := domain.ApprovalNotRequired
		if ref.LeadReviewRequired {
			leadStatus = domain.ApprovalPending
		}

		records = append(records, domain.ApprovalRecord{
			ApprovalID:    uuid.NewString(),
			TimesheetID:   ts.TimesheetID,
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
	return records, nil
}

// FreezeIfEligible freezes a timesheet once every approval record's
// management tier has approved. This is the single authoritative boundary
// past which hours become eligible for billing aggregation.
func (s *timesheetService) FreezeIfEligible(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ts, err := s.loadActiveTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if ts.Status != domain.StatusManagementPending {
		return nil, fmt.Errorf("%w: cannot freeze timesheet in status %s", apperrors.ErrStateConflict, ts.Status)
	}

	approvals, err := s.approvalRepo.FindActiveApprovalsByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve approval records: %w", err)
	}

	entries, err := s.timesheetRepo.FindEntriesByTimesheetID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}
	if missing := missingApprovalProjects(entries, approvals); len(missing) > 0 {
		return nil, fmt.Errorf("%w: timesheet %s has entries for projects %v without approval records",
			apperrors.ErrMissingApproval, timesheetID, missing)
	}

	var blocking []string
	for _, rec := range approvals {
		if rec.Management.Status != domain.ApprovalApproved {
			blocking = append(blocking, rec.ApprovalID)
		}
	}
	if len(blocking) > 0 {
		return nil, fmt.Errorf("%w: management approval outstanding on approval records %v",
			apperrors.ErrStateConflict, blocking)
	}

	now := time.Now().UTC()
	if err := s.timesheetRepo.UpdateTimesheetStatus(ctx, timesheetID, domain.StatusManagementPending, domain.StatusFrozen, true, actorID, now); err != nil {
		logger.Error("Failed to freeze timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
		return nil, fmt.Errorf("failed to freeze timesheet: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "timesheet.frozen",
		ActorID:    actorID,
		EntityID:   timesheetID,
		Before:     string(domain.StatusManagementPending),
		After:      string(domain.StatusFrozen),
		OccurredAt: now,
	})

	ts.Status = domain.StatusFrozen
	ts.Frozen = true
	ts.LastUpdatedAt = now
	ts.LastUpdatedBy = actorID
	logger.Info("Timesheet frozen", slog.String("timesheet_id", timesheetID))
	return ts, nil
}

// MarkBilled records that an invoicing cycle consumed the frozen totals.
// Purely informational; no further hour mutation is implied.
func (s *timesheetService) MarkBilled(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error) {
	ts, err := s.loadActiveTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if ts.Status != domain.StatusFrozen {
		return nil, fmt.Errorf("%w: cannot mark timesheet billed in status %s", apperrors.ErrStateConflict, ts.Status)
	}

	now := time.Now().UTC()
	if err := s.timesheetRepo.UpdateTimesheetStatus(ctx, timesheetID, domain.StatusFrozen, domain.StatusBilled, true, actorID, now); err != nil {
		return nil, fmt.Errorf("failed to mark timesheet billed: %w", err)
	}

	s.audit.Record(ctx, domain.AuditEvent{
		Event:      "timesheet.billed",
		ActorID:    actorID,
		EntityID:   timesheetID,
		Before:     string(domain.StatusFrozen),
		After:      string(domain.StatusBilled),
		OccurredAt: now,
	})

	ts.Status = domain.StatusBilled
	ts.LastUpdatedAt = now
	ts.LastUpdatedBy = actorID
	return ts, nil
}

// SoftDeleteTimesheet marks a timesheet deleted. Frozen and billed
// timesheets are off limits; only the privileged hard-delete path (not part
// of this service) may touch them.
func (s *timesheetService) SoftDeleteTimesheet(ctx context.Context, timesheetID string, actorID string) error {
	ts, err := s.loadActiveTimesheet(ctx, timesheetID)
	if err != nil {
		return err
	}
	if ts.UserID != actorID {
		return fmt.Errorf("%w: only the owning user may delete a timesheet", apperrors.ErrForbidden)
	}
	if ts.Frozen || ts.Status == domain.StatusBilled {
		return fmt.Errorf("%w: frozen timesheets cannot be deleted", apperrors.ErrStateConflict)
	}

	return s.timesheetRepo.SoftDeleteTimesheet(ctx, timesheetID, actorID, time.Now().UTC())
}

// loadActiveTimesheet fetches a timesheet and treats soft-deleted ones as
// absent.
func (s *timesheetService) loadActiveTimesheet(ctx context.Context, timesheetID string) (*domain.Timesheet, error) {
	ts, err := s.timesheetRepo.FindTimesheetByID(ctx, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find timesheet %s: %w", timesheetID, err)
	}
	if ts.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return ts, nil
}

// loadEditableOwnedTimesheet fetches a timesheet and verifies the actor owns
// it and entries under it are still mutable. Once frozen, no entry may be
// created, edited, or deleted.
func (s *timesheetService) loadEditableOwnedTimesheet(ctx context.Context, timesheetID string, actorID string) (*domain.Timesheet, error) {
	ts, err := s.loadActiveTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if ts.UserID != actorID {
		return nil, fmt.Errorf("%w: only the owning user may modify time entries", apperrors.ErrForbidden)
	}
	if !ts.Status.Editable() {
		return nil, fmt.Errorf("%w: time entries cannot be modified while timesheet is %s", apperrors.ErrStateConflict, ts.Status)
	}
	return ts, nil
}

func validateEntryHours(hours decimal.Decimal) error {
	if hours.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: hours must be positive", apperrors.ErrValidation)
	}
	if hours.GreaterThan(maxDailyHours) {
		return fmt.Errorf("%w: hours %s exceed the 24h daily cap", apperrors.ErrValidation, hours.String())
	}
	return nil
}

// validateWeeklyTotal checks that replacing (or adding, when excludeEntryID
// is empty) an entry keeps the week's total within 168 hours.
func validateWeeklyTotal(entries []domain.TimeEntry, excludeEntryID string, newHours decimal.Decimal) error {
	total := newHours
	for _, e := range entries {
		if e.EntryID == excludeEntryID {
			continue
		}
		total = total.Add(e.Hours)
	}
	if total.GreaterThan(maxWeeklyHours) {
		return fmt.Errorf("%w: weekly total %s exceeds the 168h cap", apperrors.ErrValidation, total.String())
	}
	return nil
}

// missingApprovalProjects returns the project IDs that have entries but no
// active approval record. A non-empty result is a data-integrity fault.
func missingApprovalProjects(entries []domain.TimeEntry, approvals []domain.ApprovalRecord) []string {
	covered := make(map[string]struct{}, len(approvals))
	for _, rec := range approvals {
		covered[rec.ProjectID] = struct{}{}
	}
	seen := make(map[string]struct{})
	var missing []string
	for _, e := range entries {
		if _, ok := covered[e.ProjectID]; ok {
			continue
		}
		if _, dup := seen[e.ProjectID]; dup {
			continue
		}
		seen[e.ProjectID] = struct{}{}
		missing = append(missing, e.ProjectID)
	}
	return missing
}
