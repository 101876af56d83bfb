// internal/repository/postgres/requirement_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"compliancehub-service/internal/domain/compliance"
	xerrors "compliancehub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequirementRepository struct {
	db *pgxpool.Pool
}

func NewRequirementRepository(db *pgxpool.Pool) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = `
	id, project_id, code, title, description, risk_class, status,
	approved_by, approved_at, created_at, updated_at
`

func scanRequirement(row pgx.Row) (*compliance.Requirement, error) {
	var req compliance.Requirement
	err := row.Scan(
		&req.ID, &req.ProjectID, &req.Code, &req.Title, &req.Description,
		&req.RiskClass, &req.Status, &req.ApprovedBy, &req.ApprovedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan requirement: %w", err)
	}
	return &req, nil
}

// ListByProject returns a project's requirements ordered by code
func (r *RequirementRepository) ListByProject(ctx context.Context, projectID string) ([]*compliance.Requirement, error) {
	query := `
		SELECT ` + requirementColumns + `
		FROM requirements
		WHERE project_id = $1
		ORDER BY code
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	var requirements []*compliance.Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		requirements = append(requirements, req)
	}
	return requirements, rows.Err()
}

// FindByID retrieves a requirement by ID
func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*compliance.Requirement, error) {
	query := `
		SELECT ` + requirementColumns + `
		FROM requirements
		WHERE id = $1
	`
	return scanRequirement(r.db.QueryRow(ctx, query, id))
}

// Approve records an approval. Already-approved requirements are left
// untouched so the original approver is preserved.
func (r *RequirementRepository) Approve(ctx context.Context, id, approvedBy string) (*compliance.Requirement, error) {
	query := `
		UPDATE requirements
		SET status = 'approved', approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status <> 'approved'
		RETURNING ` + requirementColumns + `
	`
	return scanRequirement(r.db.QueryRow(ctx, query, id, approvedBy))
}
