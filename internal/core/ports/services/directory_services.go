package services

import (
	"context"

	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
)

// UserDirectory resolves user IDs to display data. It is a collaborator of
// the engine; user CRUD lives elsewhere.
type UserDirectory interface {
	GetUserRef(ctx context.Context, userID string) (*domain.UserRef, error)
}

// ProjectDirectory resolves project IDs to names and required review tiers.
type ProjectDirectory interface {
	GetProjectRef(ctx context.Context, projectID string) (*domain.ProjectRef, error)

	// GetProjectRefs resolves several projects at once; missing IDs are
	// absent from the map rather than an error.
	GetProjectRefs(ctx context.Context, projectIDs []string) (map[string]domain.ProjectRef, error)
}

// AuditSink receives one structured event per state transition, approval
// decision, and adjustment lifecycle change. Delivery is fire-and-forget:
// failures are logged by the implementation and never retried by callers.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent)
}
