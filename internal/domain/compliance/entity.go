// internal/domain/compliance/entity.go
package compliance

import (
	"database/sql"
	"time"
)

// Project is a tenant-scoped compliance project grouping requirements
// and their generated test cases.
type Project struct {
	ID             string         `json:"id" db:"id"`
	OrganizationID string         `json:"organization_id" db:"organization_id"`
	Name           string         `json:"name" db:"name"`
	Description    sql.NullString `json:"description" db:"description"`
	Standard       string         `json:"standard" db:"standard"` // e.g. IEC 62304, ISO 13485
	Status         string         `json:"status" db:"status"`     // active, archived
	CreatedBy      string         `json:"created_by" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Requirement is a regulatory requirement tracked within a project.
type Requirement struct {
	ID          string         `json:"id" db:"id"`
	ProjectID   string         `json:"project_id" db:"project_id"`
	Code        string         `json:"code" db:"code"` // e.g. REQ-001
	Title       string         `json:"title" db:"title"`
	Description sql.NullString `json:"description" db:"description"`
	RiskClass   string         `json:"risk_class" db:"risk_class"` // A, B, C
	Status      string         `json:"status" db:"status"`         // draft, approved
	ApprovedBy  sql.NullString `json:"approved_by" db:"approved_by"`
	ApprovedAt  sql.NullTime   `json:"approved_at" db:"approved_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// TestCase traces a requirement to its verification evidence.
type TestCase struct {
	ID            string         `json:"id" db:"id"`
	RequirementID string         `json:"requirement_id" db:"requirement_id"`
	Title         string         `json:"title" db:"title"`
	Status        string         `json:"status" db:"status"` // pending_review, approved, changes_requested
	ReviewedBy    sql.NullString `json:"reviewed_by" db:"reviewed_by"`
	ReviewedAt    sql.NullTime   `json:"reviewed_at" db:"reviewed_at"`
	ReviewComment sql.NullString `json:"review_comment" db:"review_comment"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}
