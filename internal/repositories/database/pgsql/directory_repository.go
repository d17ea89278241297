package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	"github.com/worklog-hq/timesheet_backend/internal/core/domain"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
)

// PgxUserDirectory resolves user references from the synced users table.
// User lifecycle management happens in the identity system; these rows are a
// read-only projection.
type PgxUserDirectory struct {
	BaseRepository
}

// NewPgxUserDirectory creates a user directory backed by postgres.
func NewPgxUserDirectory(pool *pgxpool.Pool) portssvc.UserDirectory {
	return &PgxUserDirectory{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portssvc.UserDirectory = (*PgxUserDirectory)(nil)

// GetUserRef retrieves one user reference.
func (r *PgxUserDirectory) GetUserRef(ctx context.Context, userID string) (*domain.UserRef, error) {
	query := `SELECT user_id, display_name, role FROM users WHERE user_id = $1;`

	var ref domain.UserRef
	err := r.Pool.QueryRow(ctx, query, userID).Scan(&ref.UserID, &ref.DisplayName, &ref.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return &ref, nil
}

// PgxProjectDirectory resolves project references and their required review
// tiers from the synced projects table.
type PgxProjectDirectory struct {
	BaseRepository
}

// NewPgxProjectDirectory creates a project directory backed by postgres.
func NewPgxProjectDirectory(pool *pgxpool.Pool) portssvc.ProjectDirectory {
	return &PgxProjectDirectory{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portssvc.ProjectDirectory = (*PgxProjectDirectory)(nil)

// GetProjectRef retrieves one project reference.
func (r *PgxProjectDirectory) GetProjectRef(ctx context.Context, projectID string) (*domain.ProjectRef, error) {
	query := `SELECT project_id, name, lead_review_required, archived FROM projects WHERE project_id = $1;`

	var ref domain.ProjectRef
	err := r.Pool.QueryRow(ctx, query, projectID).Scan(&ref.ProjectID, &ref.Name, &ref.LeadReviewRequired, &ref.Archived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	return &ref, nil
}

// GetProjectRefs resolves several projects at once. Missing IDs are simply
// absent from the map.
func (r *PgxProjectDirectory) GetProjectRefs(ctx context.Context, projectIDs []string) (map[string]domain.ProjectRef, error) {
	refs := make(map[string]domain.ProjectRef, len(projectIDs))
	if len(projectIDs) == 0 {
		return refs, nil
	}

	query := `SELECT project_id, name, lead_review_required, archived FROM projects WHERE project_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, projectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.ProjectRef
		if err := rows.Scan(&ref.ProjectID, &ref.Name, &ref.LeadReviewRequired, &ref.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		refs[ref.ProjectID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	return refs, nil
}
