// internal/repository/postgres/testcase_repo.go
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

type TestCaseRepository struct {
	db *pgxpool.Pool
}

func NewTestCaseRepository(db *pgxpool.Pool) *TestCaseRepository {
	return &TestCaseRepository{db: db}
}

const testCaseColumns = `
	id, requirement_id, title, status, reviewed_by, reviewed_at,
	review_comment, created_at, updated_at
`

func scanTestCase(row pgx.Row) (*compliance.TestCase, error) {
	var tc compliance.TestCase
	err := row.Scan(
		&tc.ID, &tc.RequirementID, &tc.Title, &tc.Status, &tc.ReviewedBy,
		&tc.ReviewedAt, &tc.ReviewComment, &tc.CreatedAt, &tc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan test case: %w", err)
	}
	return &tc, nil
}

// FindByID retrieves a test case by ID
func (r *TestCaseRepository) FindByID(ctx context.Context, id string) (*compliance.TestCase, error) {
	query := `
		SELECT ` + testCaseColumns + `
		FROM test_cases
		WHERE id = $1
	`
	return scanTestCase(r.db.QueryRow(ctx, query, id))
}

// ListByRequirement returns test cases tracing one requirement
func (r *TestCaseRepository) ListByRequirement(ctx context.Context, requirementID string) ([]*compliance.TestCase, error) {
	query := `
		SELECT ` + testCaseColumns + `
		FROM test_cases
		WHERE requirement_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, requirementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var cases []*compliance.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

// Review records a verdict on a pending test case
func (r *TestCaseRepository) Review(ctx context.Context, id, reviewedBy, verdict, comment string) (*compliance.TestCase, error) {
	query := `
		UPDATE test_cases
		SET status = $3, reviewed_by = $2, reviewed_at = NOW(),
		    review_comment = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + testCaseColumns + `
	`
	return scanTestCase(r.db.QueryRow(ctx, query, id, reviewedBy, verdict, comment))
}
