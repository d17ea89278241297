package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// --- Mock TimesheetRepository ---
type MockTimesheetRepository struct {
	mock.Mock
}

func (m *MockTimesheetRepository) FindTimesheetByID(ctx context.Context, timesheetID string) (*domain.Timesheet, error) {
	args := m.Called(ctx, timesheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Timesheet), args.Error(1)
}

func (m *MockTimesheetRepository) FindTimesheetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*domain.Timesheet, error) {
	args := m.Called(ctx, userID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Timesheet), args.Error(1)
}

func (m *MockTimesheetRepository) ListTimesheetsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Timesheet, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var timesheets []domain.Timesheet
	if args.Get(0) != nil {
		timesheets = args.Get(0).([]domain.Timesheet)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return timesheets, token, args.Error(2)
}

func (m *MockTimesheetRepository) SaveTimesheet(ctx context.Context, timesheet domain.Timesheet) error {
	args := m.Called(ctx, timesheet)
	return args.Error(0)
}

func (m *MockTimesheetRepository) UpdateTimesheetStatus(ctx context.Context, timesheetID string, fromStatus, toStatus domain.TimesheetStatus, frozen bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, timesheetID, fromStatus, toStatus, frozen, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockTimesheetRepository) SoftDeleteTimesheet(ctx context.Context, timesheetID string, deletedBy string, deletedAt time.Time) error {
	args := m.Called(ctx, timesheetID, deletedBy, deletedAt)
	return args.Error(0)
}

func (m *MockTimesheetRepository) SubmitTimesheetWithApprovals(ctx context.Context, timesheetID string, fromStatus domain.TimesheetStatus, approvals []domain.ApprovalRecord, actorID string, at time.Time) error {
	args := m.Called(ctx, timesheetID, fromStatus, approvals, actorID, at)
	return args.Error(0)
}

func (m *MockTimesheetRepository) FindTimeEntryByID(ctx context.Context, entryID string) (*domain.TimeEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeEntry), args.Error(1)
}

func (m *MockTimesheetRepository) FindEntriesByTimesheetID(ctx context.Context, timesheetID string) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, timesheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *MockTimesheetRepository) SaveTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimesheetRepository) UpdateTimeEntry(ctx context.Context, entry domain.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimesheetRepository) SoftDeleteTimeEntry(ctx context.Context, entryID string, deletedBy string, deletedAt time.Time) error {
	args := m.Called(ctx, entryID, deletedBy, deletedAt)
	return args.Error(0)
}

// --- Mock ApprovalRepository ---
type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) FindApprovalByID(ctx context.Context, approvalID string) (*domain.ApprovalRecord, error) {
	args := m.Called(ctx, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalRepository) FindActiveApprovalsByTimesheetID(ctx context.Context, timesheetID string) ([]domain.ApprovalRecord, error) {
	args := m.Called(ctx, timesheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalRepository) FindActiveApprovalsByTimesheetIDs(ctx context.Context, timesheetIDs []string) (map[string][]domain.ApprovalRecord, error) {
	args := m.Called(ctx, timesheetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.ApprovalRecord), args.Error(1)
}

func (m *MockApprovalRepository) InsertApprovalRecords(ctx context.Context, records []domain.ApprovalRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockApprovalRepository) UpdateTierDecision(ctx context.Context, approvalID string, tier domain.ReviewTier, decision domain.TierDecision, rejectReason string, expectedVersion int64, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, approvalID, tier, decision, rejectReason, expectedVersion, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock BillingRepository ---
type MockBillingRepository struct {
	mock.Mock
}

func (m *MockBillingRepository) FindActiveTimesheetsOverlapping(ctx context.Context, start, end time.Time) ([]domain.Timesheet, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Timesheet), args.Error(1)
}

func (m *MockBillingRepository) SumEntryHoursByProject(ctx context.Context, timesheetID string, start, end time.Time) (map[string]domain.EntrySums, error) {
	args := m.Called(ctx, timesheetID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.EntrySums), args.Error(1)
}

// --- Mock AdjustmentRepository ---
type MockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockAdjustmentRepository) FindAdjustmentByID(ctx context.Context, adjustmentID string) (*domain.BillingAdjustment, error) {
	args := m.Called(ctx, adjustmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillingAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) FindActiveAdjustmentByScope(ctx context.Context, userID, projectID string, periodStart, periodEnd time.Time) (*domain.BillingAdjustment, error) {
	args := m.Called(ctx, userID, projectID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BillingAdjustment), args.Error(1)
}

func (m *MockAdjustmentRepository) ListAdjustmentEvents(ctx context.Context, adjustmentID string) ([]domain.AdjustmentEvent, error) {
	args := m.Called(ctx, adjustmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdjustmentEvent), args.Error(1)
}

func (m *MockAdjustmentRepository) CreateAdjustment(ctx context.Context, adjustment domain.BillingAdjustment, event domain.AdjustmentEvent) error {
	args := m.Called(ctx, adjustment, event)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) SupersedeAdjustment(ctx context.Context, existingID string, replacement domain.BillingAdjustment, events []domain.AdjustmentEvent) error {
	args := m.Called(ctx, existingID, replacement, events)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) SoftDeleteAdjustment(ctx context.Context, adjustmentID string, deletedBy string, deletedAt time.Time, event domain.AdjustmentEvent) error {
	args := m.Called(ctx, adjustmentID, deletedBy, deletedAt, event)
	return args.Error(0)
}

func (m *MockAdjustmentRepository) RestoreAdjustment(ctx context.Context, adjustmentID string, restoredBy string, restoredAt time.Time, event domain.AdjustmentEvent) error {
	args := m.Called(ctx, adjustmentID, restoredBy, restoredAt, event)
	return args.Error(0)
}

// --- Mock ProjectDirectory ---
type MockProjectDirectory struct {
	mock.Mock
}

func (m *MockProjectDirectory) GetProjectRef(ctx context.Context, projectID string) (*domain.ProjectRef, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectRef), args.Error(1)
}

func (m *MockProjectDirectory) GetProjectRefs(ctx context.Context, projectIDs []string) (map[string]domain.ProjectRef, error) {
	args := m.Called(ctx, projectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ProjectRef), args.Error(1)
}

// --- Mock AuditSink ---
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, event domain.AuditEvent) {
	m.Called(ctx, event)
}

// relaxedAudit returns an audit sink that accepts any event; tests asserting
// specific events set their own expectations instead.
func relaxedAudit() *MockAuditSink {
	sink := new(MockAuditSink)
	sink.On("Record", mock.Anything, mock.Anything).Maybe()
	return sink
}
