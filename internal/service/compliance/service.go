// internal/service/compliance/service.go
package compliance

import (
	"context"
	"database/sql"

	"compliancehub-service/internal/domain/compliance"
	domain "compliancehub-service/internal/domain/identity"
	xerrors "compliancehub-service/internal/pkg/errors"
	"compliancehub-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ComplianceService backs the dashboard's project, requirement, and
// test-case views. Every operation is scoped to the caller's
// organization; cross-tenant access is ErrWrongTenant regardless of role.
type ComplianceService struct {
	projects     *postgres.ProjectRepository
	requirements *postgres.RequirementRepository
	testCases    *postgres.TestCaseRepository
	logger       *zap.Logger
}

func NewComplianceService(
	projects *postgres.ProjectRepository,
	requirements *postgres.RequirementRepository,
	testCases *postgres.TestCaseRepository,
	logger *zap.Logger,
) *ComplianceService {
	return &ComplianceService{
		projects:     projects,
		requirements: requirements,
		testCases:    testCases,
		logger:       logger,
	}
}

// ListProjects returns the caller's tenant projects.
func (s *ComplianceService) ListProjects(ctx context.Context, user *domain.User) ([]*compliance.Project, error) {
	if user.OrganizationID == "" {
		return nil, nil
	}
	return s.projects.ListByOrganization(ctx, user.OrganizationID)
}

// CreateProject creates a project in the caller's tenant.
func (s *ComplianceService) CreateProject(ctx context.Context, user *domain.User, req *compliance.CreateProjectRequest) (*compliance.Project, error) {
	if user.OrganizationID == "" {
		return nil, xerrors.ErrWrongTenant
	}

	p := &compliance.Project{
		ID:             ulid.Make().String(),
		OrganizationID: user.OrganizationID,
		Name:           req.Name,
		Description:    sql.NullString{String: req.Description, Valid: req.Description != ""},
		Standard:       req.Standard,
		Status:         "active",
		CreatedBy:      user.ID,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", p.ID),
		zap.String("organization_id", p.OrganizationID),
		zap.String("created_by", user.ID),
	)
	return p, nil
}

// ArchiveProject archives a tenant project.
func (s *ComplianceService) ArchiveProject(ctx context.Context, user *domain.User, projectID string) error {
	if _, err := s.tenantProject(ctx, user, projectID); err != nil {
		return err
	}
	return s.projects.Archive(ctx, projectID)
}

// ListRequirements returns a tenant project's requirements.
func (s *ComplianceService) ListRequirements(ctx context.Context, user *domain.User, projectID string) ([]*compliance.Requirement, error) {
	if _, err := s.tenantProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	return s.requirements.ListByProject(ctx, projectID)
}

// ApproveRequirement records an approval by the caller.
func (s *ComplianceService) ApproveRequirement(ctx context.Context, user *domain.User, requirementID string) (*compliance.Requirement, error) {
	req, err := s.requirements.FindByID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tenantProject(ctx, user, req.ProjectID); err != nil {
		return nil, err
	}

	approved, err := s.requirements.Approve(ctx, requirementID, user.ID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			// Status guard matched nothing: already approved
			return req, nil
		}
		return nil, err
	}

	s.logger.Info("requirement approved",
		zap.String("requirement_id", requirementID),
		zap.String("approved_by", user.ID),
	)
	return approved, nil
}

// ListTestCases returns the test cases tracing a requirement.
func (s *ComplianceService) ListTestCases(ctx context.Context, user *domain.User, requirementID string) ([]*compliance.TestCase, error) {
	req, err := s.requirements.FindByID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tenantProject(ctx, user, req.ProjectID); err != nil {
		return nil, err
	}
	return s.testCases.ListByRequirement(ctx, requirementID)
}

// ReviewTestCase records a review verdict by the caller.
func (s *ComplianceService) ReviewTestCase(ctx context.Context, user *domain.User, testCaseID string, req *compliance.ReviewTestCaseRequest) (*compliance.TestCase, error) {
	tc, err := s.testCases.FindByID(ctx, testCaseID)
	if err != nil {
		return nil, err
	}
	requirement, err := s.requirements.FindByID(ctx, tc.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tenantProject(ctx, user, requirement.ProjectID); err != nil {
		return nil, err
	}

	reviewed, err := s.testCases.Review(ctx, testCaseID, user.ID, req.Verdict, req.Comment)
	if err != nil {
		return nil, err
	}

	s.logger.Info("test case reviewed",
		zap.String("test_case_id", testCaseID),
		zap.String("verdict", req.Verdict),
		zap.String("reviewed_by", user.ID),
	)
	return reviewed, nil
}

// tenantProject loads a project and enforces tenant equality.
func (s *ComplianceService) tenantProject(ctx context.Context, user *domain.User, projectID string) (*compliance.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OrganizationID != user.OrganizationID {
		return nil, xerrors.ErrWrongTenant
	}
	return p, nil
}
