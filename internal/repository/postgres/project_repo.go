// internal/repository/postgres/project_repo.go
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

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, organization_id, name, description, standard, status,
	created_by, created_at, updated_at
`

func scanProject(row pgx.Row) (*compliance.Project, error) {
	var p compliance.Project
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.Standard, &p.Status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return &p, nil
}

// ListByOrganization returns a tenant's projects, newest first
func (r *ProjectRepository) ListByOrganization(ctx context.Context, orgID string) ([]*compliance.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*compliance.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// FindByID retrieves a project by ID
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*compliance.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`
	return scanProject(r.db.QueryRow(ctx, query, id))
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, p *compliance.Project) error {
	query := `
		INSERT INTO projects (id, organization_id, name, description, standard, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.OrganizationID, p.Name, p.Description, p.Standard, p.Status, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Archive marks a project archived
func (r *ProjectRepository) Archive(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET status = 'archived', updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
