package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
	"github.com/worklog-hq/timesheet_backend/internal/core/services"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
)

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockApprovalRepo  *MockApprovalRepository
	mockTimesheetRepo *MockTimesheetRepository
	mockProjects      *MockProjectDirectory
	mockAudit         *MockAuditSink
	service           portssvc.ApprovalSvcFacade
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockApprovalRepo = new(MockApprovalRepository)
	suite.mockTimesheetRepo = new(MockTimesheetRepository)
	suite.mockProjects = new(MockProjectDirectory)
	suite.mockAudit = relaxedAudit()
	suite.service = services.NewApprovalService(suite.mockApprovalRepo, suite.mockTimesheetRepo, suite.mockProjects, suite.mockAudit)
}

func (suite *ApprovalServiceTestSuite) submittedFixture(leadRequired bool) (*domain.Timesheet, *domain.ApprovalRecord) {
	ts := &domain.Timesheet{
		TimesheetID: uuid.NewString(),
		UserID:      uuid.NewString(),
		WeekStart:   monday,
		WeekEnd:     monday.AddDate(0, 0, 6),
		Status:      domain.StatusSubmitted,
	}
	leadStatus := domain.ApprovalNotRequired
	if leadRequired {
		leadStatus = domain.ApprovalPending
	}
	rec := &domain.ApprovalRecord{
		ApprovalID:    uuid.NewString(),
		TimesheetID:   ts.TimesheetID,
		ProjectID:     uuid.NewString(),
		Lead:          domain.TierDecision{Status: leadStatus},
		Manager:       domain.TierDecision{Status: domain.ApprovalPending},
		Management:    domain.TierDecision{Status: domain.ApprovalPending},
		WorkedHours:   decimal.NewFromInt(10),
		BillableHours: decimal.NewFromInt(8),
		Version:       1,
	}
	return ts, rec
}

// --- AdvanceApproval ---

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_ManagerApproveAdvancesTimesheet() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockApprovalRepo.On("UpdateTierDecision", ctx, rec.ApprovalID, domain.TierManager,
		mock.MatchedBy(func(d domain.TierDecision) bool {
			return d.Status == domain.ApprovalApproved && d.ActorID == actorID && d.DecidedAt != nil
		}), "", int64(1), actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	// All pre-management tiers resolved, so the timesheet advances twice.
	suite.mockApprovalRepo.On("FindActiveApprovalsByTimesheetID", ctx, ts.TimesheetID).Return([]domain.ApprovalRecord{*rec}, nil).Once()
	suite.mockTimesheetRepo.On("UpdateTimesheetStatus", ctx, ts.TimesheetID, domain.StatusSubmitted, domain.StatusManagerApproved, false, actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTimesheetRepo.On("UpdateTimesheetStatus", ctx, ts.TimesheetID, domain.StatusManagerApproved, domain.StatusManagementPending, false, actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalApproved, result.Manager.Status)
	suite.Equal(int64(2), result.Version)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
	suite.mockTimesheetRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_LeadStillPendingHoldsTimesheet() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(true)
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockApprovalRepo.On("UpdateTierDecision", ctx, rec.ApprovalID, domain.TierManager, mock.AnythingOfType("domain.TierDecision"), "", int64(1), actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockApprovalRepo.On("FindActiveApprovalsByTimesheetID", ctx, ts.TimesheetID).Return([]domain.ApprovalRecord{*rec}, nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalApproved, result.Manager.Status)
	suite.mockTimesheetRepo.AssertNotCalled(suite.T(), "UpdateTimesheetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_RejectCascadesToTimesheet() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionReject, Reason: "hours on wrong project", Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockApprovalRepo.On("UpdateTierDecision", ctx, rec.ApprovalID, domain.TierManager,
		mock.MatchedBy(func(d domain.TierDecision) bool { return d.Status == domain.ApprovalRejected }),
		"hours on wrong project", int64(1), actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockTimesheetRepo.On("UpdateTimesheetStatus", ctx, ts.TimesheetID, domain.StatusSubmitted, domain.StatusRejected, false, actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalRejected, result.Manager.Status)
	suite.Equal("hours on wrong project", result.RejectReason)
	suite.mockTimesheetRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_RejectWithoutReason() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionReject, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_StaleVersionConflict() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockApprovalRepo.On("UpdateTierDecision", ctx, rec.ApprovalID, domain.TierManager, mock.AnythingOfType("domain.TierDecision"), "", int64(1), actorID, mock.AnythingOfType("time.Time")).Return(apperrors.ErrConflict).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_TierNotRequired() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false) // lead is NOT_REQUIRED
	req := dto.AdvanceApprovalRequest{Tier: "LEAD", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_TierAlreadyResolved() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	rec.Manager = domain.TierDecision{Status: domain.ApprovalApproved}
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionApprove, Version: 2}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_ManagementBeforePendingStatus() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false) // timesheet still SUBMITTED
	req := dto.AdvanceApprovalRequest{Tier: "MANAGEMENT", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_ManagementApproveDoesNotFreeze() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	ts.Status = domain.StatusManagementPending
	rec.Manager = domain.TierDecision{Status: domain.ApprovalApproved}
	req := dto.AdvanceApprovalRequest{Tier: "MANAGEMENT", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()
	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockApprovalRepo.On("UpdateTierDecision", ctx, rec.ApprovalID, domain.TierManagement, mock.AnythingOfType("domain.TierDecision"), "", int64(1), actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalApproved, result.Management.Status)
	// Freezing is a separate deliberate operation.
	suite.mockTimesheetRepo.AssertNotCalled(suite.T(), "UpdateTimesheetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestAdvanceApproval_SupersededRecord() {
	ctx := context.Background()
	actorID := uuid.NewString()
	_, rec := suite.submittedFixture(false)
	rec.Superseded = true
	req := dto.AdvanceApprovalRequest{Tier: "MANAGER", Decision: dto.DecisionApprove, Version: 1}

	suite.mockApprovalRepo.On("FindApprovalByID", ctx, rec.ApprovalID).Return(rec, nil).Once()

	result, err := suite.service.AdvanceApproval(ctx, rec.ApprovalID, req, actorID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

// --- ReconcileMissingApprovalRecords ---

func (suite *ApprovalServiceTestSuite) TestReconcile_CreatesPendingRecords() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	orphanProject := uuid.NewString()
	entries := []domain.TimeEntry{
		{EntryID: uuid.NewString(), TimesheetID: ts.TimesheetID, ProjectID: rec.ProjectID, Hours: decimal.NewFromInt(8), Billable: true},
		{EntryID: uuid.NewString(), TimesheetID: ts.TimesheetID, ProjectID: orphanProject, Hours: decimal.NewFromInt(5), Billable: true},
	}
	refs := map[string]domain.ProjectRef{
		orphanProject: {ProjectID: orphanProject, Name: "Orphan", LeadReviewRequired: false},
	}

	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockTimesheetRepo.On("FindEntriesByTimesheetID", ctx, ts.TimesheetID).Return(entries, nil).Once()
	suite.mockApprovalRepo.On("FindActiveApprovalsByTimesheetID", ctx, ts.TimesheetID).Return([]domain.ApprovalRecord{*rec}, nil).Once()
	suite.mockProjects.On("GetProjectRefs", ctx, []string{orphanProject}).Return(refs, nil).Once()
	suite.mockApprovalRepo.On("InsertApprovalRecords", ctx, mock.MatchedBy(func(records []domain.ApprovalRecord) bool {
		return len(records) == 1 &&
			records[0].ProjectID == orphanProject &&
			records[0].Lead.Status == domain.ApprovalNotRequired &&
			records[0].Manager.Status == domain.ApprovalPending &&
			records[0].Management.Status == domain.ApprovalPending &&
			records[0].WorkedHours.Equal(decimal.NewFromInt(5))
	})).Return(nil).Once()

	records, err := suite.service.ReconcileMissingApprovalRecords(ctx, ts.TimesheetID, actorID)

	suite.Require().NoError(err)
	suite.Len(records, 1)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestReconcile_NothingMissing() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, rec := suite.submittedFixture(false)
	entries := []domain.TimeEntry{
		{EntryID: uuid.NewString(), TimesheetID: ts.TimesheetID, ProjectID: rec.ProjectID, Hours: decimal.NewFromInt(8)},
	}

	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()
	suite.mockTimesheetRepo.On("FindEntriesByTimesheetID", ctx, ts.TimesheetID).Return(entries, nil).Once()
	suite.mockApprovalRepo.On("FindActiveApprovalsByTimesheetID", ctx, ts.TimesheetID).Return([]domain.ApprovalRecord{*rec}, nil).Once()

	records, err := suite.service.ReconcileMissingApprovalRecords(ctx, ts.TimesheetID, actorID)

	suite.Require().NoError(err)
	suite.Empty(records)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "InsertApprovalRecords", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestReconcile_EditableTimesheetRefused() {
	ctx := context.Background()
	actorID := uuid.NewString()
	ts, _ := suite.submittedFixture(false)
	ts.Status = domain.StatusDraft

	suite.mockTimesheetRepo.On("FindTimesheetByID", ctx, ts.TimesheetID).Return(ts, nil).Once()

	records, err := suite.service.ReconcileMissingApprovalRecords(ctx, ts.TimesheetID, actorID)

	suite.Require().Error(err)
	suite.Nil(records)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

// --- Run Suite ---
func TestApprovalService(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
