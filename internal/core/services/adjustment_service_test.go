package services_test

import (
	"context"
	"testing"
	"time"

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

type AdjustmentServiceTestSuite struct {
	suite.Suite
	mockAdjustmentRepo *MockAdjustmentRepository
	mockBillingRepo    *MockBillingRepository
	mockApprovalRepo   *MockApprovalRepository
	mockAudit          *MockAuditSink
	service            portssvc.AdjustmentSvcFacade
}

func (suite *AdjustmentServiceTestSuite) SetupTest() {
	suite.mockAdjustmentRepo = new(MockAdjustmentRepository)
	suite.mockBillingRepo = new(MockBillingRepository)
	suite.mockApprovalRepo = new(MockApprovalRepository)
	suite.mockAudit = relaxedAudit()
	billing := services.NewBillingService(suite.mockBillingRepo, suite.mockApprovalRepo, suite.mockAdjustmentRepo)
	suite.service = services.NewAdjustmentService(suite.mockAdjustmentRepo, billing, suite.mockAudit)
}

// expectBaseline wires the aggregation mocks so the billing engine reports
// the given worked/billable totals for one (user, project) over one week.
func (suite *AdjustmentServiceTestSuite) expectBaseline(ctx context.Context, userID, projectID string, start, end time.Time, worked, billable int64) {
	ts := billableTimesheet(userID)
	suite.mockBillingRepo.On("FindActiveTimesheetsOverlapping", ctx, start, end).Return([]domain.Timesheet{ts}, nil).Once()
	suite.mockApprovalRepo.On("FindActiveApprovalsByTimesheetIDs", ctx, []string{ts.TimesheetID}).Return(map[string][]domain.ApprovalRecord{
		ts.TimesheetID: {managementApproved(ts.TimesheetID, projectID)},
	}, nil).Once()
	suite.mockBillingRepo.On("SumEntryHoursByProject", ctx, ts.TimesheetID, start, end).Return(map[string]domain.EntrySums{
		projectID: {WorkedHours: decimal.NewFromInt(worked), BillableHours: decimal.NewFromInt(billable)},
	}, nil).Once()
}

func activeAdjustment(userID, projectID string, start, end time.Time) *domain.BillingAdjustment {
	return &domain.BillingAdjustment{
		AdjustmentID:          uuid.NewString(),
		UserID:                userID,
		ProjectID:             projectID,
		PeriodStart:           start,
		PeriodEnd:             end,
		TotalWorkedHours:      decimal.NewFromInt(40),
		OriginalBillableHours: decimal.NewFromInt(32),
		AdjustmentHours:       decimal.NewFromInt(-2),
		TotalBillableHours:    decimal.NewFromInt(38),
		AdjustedBillableHours: decimal.NewFromInt(30),
		Reason:                "client dispute",
		ActorID:               uuid.NewString(),
	}
}

// --- CreateAdjustment ---

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	userID := uuid.NewString()
	projectID := uuid.NewString()
	start, end := monday, monday.AddDate(0, 0, 6)
	req := dto.CreateAdjustmentRequest{
		UserID:          userID,
		ProjectID:       projectID,
		PeriodStart:     "2026-03-02",
		PeriodEnd:       "2026-03-08",
		AdjustmentHours: decimal.NewFromInt(-4),
		Reason:          "client disputed the Friday hours",
	}

	suite.expectBaseline(ctx, userID, projectID, start, end, 40, 32)
	suite.mockAdjustmentRepo.On("CreateAdjustment", ctx, mock.MatchedBy(func(a domain.BillingAdjustment) bool {
		return a.UserID == userID &&
			a.TotalWorkedHours.Equal(decimal.NewFromInt(40)) &&
			a.OriginalBillableHours.Equal(decimal.NewFromInt(32)) &&
			a.TotalBillableHours.Equal(decimal.NewFromInt(36)) &&
			a.AdjustedBillableHours.Equal(decimal.NewFromInt(28))
	}), mock.MatchedBy(func(e domain.AdjustmentEvent) bool {
		return e.Kind == domain.AdjustmentCreated && e.ActorID == actorID
	})).Return(nil).Once()

	adj, err := suite.service.CreateAdjustment(ctx, req, actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(adj)
	suite.True(adj.AdjustedBillableHours.Equal(decimal.NewFromInt(28)))
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_NegativeResultClampsToZero() {
	ctx := context.Background()
	actorID := uuid.NewString()
	userID := uuid.NewString()
	projectID := uuid.NewString()
	start, end := monday, monday.AddDate(0, 0, 6)
	req := dto.CreateAdjustmentRequest{
		UserID:          userID,
		ProjectID:       projectID,
		PeriodStart:     "2026-03-02",
		PeriodEnd:       "2026-03-08",
		AdjustmentHours: decimal.NewFromInt(-50),
		Reason:          "write off the whole week",
	}

	suite.expectBaseline(ctx, userID, projectID, start, end, 40, 32)
	suite.mockAdjustmentRepo.On("CreateAdjustment", ctx, mock.MatchedBy(func(a domain.BillingAdjustment) bool {
		return a.TotalBillableHours.IsZero() && a.AdjustedBillableHours.IsZero()
	}), mock.AnythingOfType("domain.AdjustmentEvent")).Return(nil).Once()

	adj, err := suite.service.CreateAdjustment(ctx, req, actorID)

	suite.Require().NoError(err)
	suite.True(adj.AdjustedBillableHours.IsZero())
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_ScopeOccupiedConflict() {
	ctx := context.Background()
	actorID := uuid.NewString()
	userID := uuid.NewString()
	projectID := uuid.NewString()
	start, end := monday, monday.AddDate(0, 0, 6)
	req := dto.CreateAdjustmentRequest{
		UserID:          userID,
		ProjectID:       projectID,
		PeriodStart:     "2026-03-02",
		PeriodEnd:       "2026-03-08",
		AdjustmentHours: decimal.NewFromInt(1),
		Reason:          "second thoughts",
	}

	suite.expectBaseline(ctx, userID, projectID, start, end, 40, 32)
	suite.mockAdjustmentRepo.On("CreateAdjustment", ctx, mock.AnythingOfType("domain.BillingAdjustment"), mock.AnythingOfType("domain.AdjustmentEvent")).Return(apperrors.ErrConflict).Once()

	adj, err := suite.service.CreateAdjustment(ctx, req, actorID)

	suite.Require().Error(err)
	suite.Nil(adj)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *AdjustmentServiceTestSuite) TestCreateAdjustment_InvertedPeriod() {
	ctx := context.Background()
	req := dto.CreateAdjustmentRequest{
		UserID:          uuid.NewString(),
		ProjectID:       uuid.NewString(),
		PeriodStart:     "2026-03-08",
		PeriodEnd:       "2026-03-02",
		AdjustmentHours: decimal.NewFromInt(1),
		Reason:          "oops",
	}

	adj, err := suite.service.CreateAdjustment(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(adj)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- SupersedeAdjustment ---

func (suite *AdjustmentServiceTestSuite) TestSupersedeAdjustment_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	userID := uuid.NewString()
	projectID := uuid.NewString()
	start, end := monday, monday.AddDate(0, 0, 6)
	existing := activeAdjustment(userID, projectID, start, end)
	req := dto.SupersedeAdjustmentRequest{
		AdjustmentHours: decimal.NewFromInt(-8),
		Reason:          "dispute escalated",
	}

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, existing.AdjustmentID).Return(existing, nil).Once()
	suite.expectBaseline(ctx, userID, projectID, start, end, 40, 32)
	suite.mockAdjustmentRepo.On("SupersedeAdjustment", ctx, existing.AdjustmentID,
		mock.MatchedBy(func(a domain.BillingAdjustment) bool {
			return a.AdjustmentID != existing.AdjustmentID &&
				a.UserID == userID &&
				a.AdjustedBillableHours.Equal(decimal.NewFromInt(24))
		}),
		mock.MatchedBy(func(events []domain.AdjustmentEvent) bool {
			return len(events) == 2 &&
				events[0].Kind == domain.AdjustmentSuperseded &&
				events[0].AdjustmentID == existing.AdjustmentID &&
				events[1].Kind == domain.AdjustmentCreated
		})).Return(nil).Once()

	replacement, err := suite.service.SupersedeAdjustment(ctx, existing.AdjustmentID, req, actorID)

	suite.Require().NoError(err)
	suite.NotEqual(existing.AdjustmentID, replacement.AdjustmentID)
	suite.True(replacement.AdjustedBillableHours.Equal(decimal.NewFromInt(24)))
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestSupersedeAdjustment_DeletedTarget() {
	ctx := context.Background()
	userID := uuid.NewString()
	existing := activeAdjustment(userID, uuid.NewString(), monday, monday.AddDate(0, 0, 6))
	deleted := time.Now().UTC()
	existing.DeletedAt = &deleted

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, existing.AdjustmentID).Return(existing, nil).Once()

	replacement, err := suite.service.SupersedeAdjustment(ctx, existing.AdjustmentID, dto.SupersedeAdjustmentRequest{AdjustmentHours: decimal.NewFromInt(1), Reason: "x"}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(replacement)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

// --- SoftDeleteAdjustment / RestoreAdjustment ---

func (suite *AdjustmentServiceTestSuite) TestSoftDeleteAdjustment_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	adj := activeAdjustment(uuid.NewString(), uuid.NewString(), monday, monday.AddDate(0, 0, 6))

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adj.AdjustmentID).Return(adj, nil).Once()
	suite.mockAdjustmentRepo.On("SoftDeleteAdjustment", ctx, adj.AdjustmentID, actorID, mock.AnythingOfType("time.Time"),
		mock.MatchedBy(func(e domain.AdjustmentEvent) bool {
			return e.Kind == domain.AdjustmentDeleted && e.AdjustmentID == adj.AdjustmentID
		})).Return(nil).Once()

	err := suite.service.SoftDeleteAdjustment(ctx, adj.AdjustmentID, actorID)

	suite.Require().NoError(err)
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestSoftDeleteAdjustment_AlreadyDeleted() {
	ctx := context.Background()
	adj := activeAdjustment(uuid.NewString(), uuid.NewString(), monday, monday.AddDate(0, 0, 6))
	deleted := time.Now().UTC()
	adj.DeletedAt = &deleted

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adj.AdjustmentID).Return(adj, nil).Once()

	err := suite.service.SoftDeleteAdjustment(ctx, adj.AdjustmentID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStateConflict)
}

func (suite *AdjustmentServiceTestSuite) TestRestoreAdjustment_Success() {
	ctx := context.Background()
	actorID := uuid.NewString()
	adj := activeAdjustment(uuid.NewString(), uuid.NewString(), monday, monday.AddDate(0, 0, 6))
	deleted := time.Now().UTC()
	adj.DeletedAt = &deleted

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adj.AdjustmentID).Return(adj, nil).Once()
	suite.mockAdjustmentRepo.On("FindActiveAdjustmentByScope", ctx, adj.UserID, adj.ProjectID, adj.PeriodStart, adj.PeriodEnd).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAdjustmentRepo.On("RestoreAdjustment", ctx, adj.AdjustmentID, actorID, mock.AnythingOfType("time.Time"),
		mock.MatchedBy(func(e domain.AdjustmentEvent) bool {
			return e.Kind == domain.AdjustmentRestored
		})).Return(nil).Once()

	restored, err := suite.service.RestoreAdjustment(ctx, adj.AdjustmentID, actorID)

	suite.Require().NoError(err)
	suite.Nil(restored.DeletedAt)
	suite.mockAdjustmentRepo.AssertExpectations(suite.T())
}

func (suite *AdjustmentServiceTestSuite) TestRestoreAdjustment_ScopeTakenConflict() {
	ctx := context.Background()
	adj := activeAdjustment(uuid.NewString(), uuid.NewString(), monday, monday.AddDate(0, 0, 6))
	deleted := time.Now().UTC()
	adj.DeletedAt = &deleted
	occupant := activeAdjustment(adj.UserID, adj.ProjectID, adj.PeriodStart, adj.PeriodEnd)

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adj.AdjustmentID).Return(adj, nil).Once()
	suite.mockAdjustmentRepo.On("FindActiveAdjustmentByScope", ctx, adj.UserID, adj.ProjectID, adj.PeriodStart, adj.PeriodEnd).Return(occupant, nil).Once()

	restored, err := suite.service.RestoreAdjustment(ctx, adj.AdjustmentID, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(restored)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAdjustmentRepo.AssertNotCalled(suite.T(), "RestoreAdjustment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ListAdjustmentHistory ---

func (suite *AdjustmentServiceTestSuite) TestListAdjustmentHistory_ChronologicalLog() {
	ctx := context.Background()
	adj := activeAdjustment(uuid.NewString(), uuid.NewString(), monday, monday.AddDate(0, 0, 6))
	events := []domain.AdjustmentEvent{
		{EventID: uuid.NewString(), AdjustmentID: adj.AdjustmentID, Kind: domain.AdjustmentCreated},
		{EventID: uuid.NewString(), AdjustmentID: adj.AdjustmentID, Kind: domain.AdjustmentDeleted},
		{EventID: uuid.NewString(), AdjustmentID: adj.AdjustmentID, Kind: domain.AdjustmentRestored},
	}

	suite.mockAdjustmentRepo.On("FindAdjustmentByID", ctx, adj.AdjustmentID).Return(adj, nil).Once()
	suite.mockAdjustmentRepo.On("ListAdjustmentEvents", ctx, adj.AdjustmentID).Return(events, nil).Once()

	result, err := suite.service.ListAdjustmentHistory(ctx, adj.AdjustmentID)

	suite.Require().NoError(err)
	suite.Equal(events, result)
}

// --- Run Suite ---
func TestAdjustmentService(t *testing.T) {
	suite.Run(t, new(AdjustmentServiceTestSuite))
}
