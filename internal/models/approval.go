package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus mirrors the per-tier status column values.
type ApprovalStatus string

// ApprovalRecord is the database row shape for a (timesheet, project)
// approval ledger entry. Each tier carries its own status, actor and
// decision timestamp; version backs optimistic concurrency.
type ApprovalRecord struct {
	ApprovalID  string `json:"approvalID"`
	TimesheetID string `json:"timesheetID"`
	ProjectID   string `json:"projectID"`

	LeadStatus    ApprovalStatus `json:"leadStatus"`
	LeadActorID   *string        `json:"leadActorID,omitempty"`
	LeadDecidedAt *time.Time     `json:"leadDecidedAt,omitempty"`

	ManagerStatus    ApprovalStatus `json:"managerStatus"`
	ManagerActorID   *string        `json:"managerActorID,omitempty"`
	ManagerDecidedAt *time.Time     `json:"managerDecidedAt,omitempty"`

	ManagementStatus    ApprovalStatus `json:"managementStatus"`
	ManagementActorID   *string        `json:"managementActorID,omitempty"`
	ManagementDecidedAt *time.Time     `json:"managementDecidedAt,omitempty"`

	WorkedHours   decimal.Decimal `json:"workedHours"`
	BillableHours decimal.Decimal `json:"billableHours"`

	RejectReason string `json:"rejectReason,omitempty"`
	Superseded   bool   `json:"superseded"`
	Version      int64  `json:"version"`
	AuditFields
}
