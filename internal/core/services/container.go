package services

import (
	portsrepo "github.com/worklog-hq/timesheet_backend/internal/core/ports/repositories"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
)

// NewServiceContainer wires every service with its repositories and
// collaborators. Handlers depend only on the container.
func NewServiceContainer(repos portsrepo.RepositoryProvider, projectDir portssvc.ProjectDirectory, audit portssvc.AuditSink) *portssvc.ServiceContainer {
	billing := NewBillingService(repos.BillingRepo, repos.ApprovalRepo, repos.AdjustmentRepo)
	return &portssvc.ServiceContainer{
		Timesheet:  NewTimesheetService(repos.TimesheetRepo, repos.ApprovalRepo, projectDir, audit),
		Approval:   NewApprovalService(repos.ApprovalRepo, repos.TimesheetRepo, projectDir, audit),
		Billing:    billing,
		Adjustment: NewAdjustmentService(repos.AdjustmentRepo, billing, audit),
	}
}
