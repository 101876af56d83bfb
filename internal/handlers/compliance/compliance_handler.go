// internal/handlers/compliance/compliance_handler.go
package compliance

import (
	"net/http"

	domain "compliancehub-service/internal/domain/compliance"
	"compliancehub-service/internal/middleware"
	xerrors "compliancehub-service/internal/pkg/errors"
	"compliancehub-service/internal/pkg/response"
	complianceUsecase "compliancehub-service/internal/service/compliance"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ComplianceHandler struct {
	service *complianceUsecase.ComplianceService
	logger  *zap.Logger
}

func NewComplianceHandler(service *complianceUsecase.ComplianceService, logger *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{service: service, logger: logger}
}

// ========== Projects ==========

func (h *ComplianceHandler) ListProjects(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	projects, err := h.service.ListProjects(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", projects)
}

func (h *ComplianceHandler) CreateProject(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), user, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "project created", project)
}

func (h *ComplianceHandler) ArchiveProject(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	if err := h.service.ArchiveProject(c.Request.Context(), user, c.Param("project_id")); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "project archived", nil)
}

// ========== Requirements ==========

func (h *ComplianceHandler) ListRequirements(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	requirements, err := h.service.ListRequirements(c.Request.Context(), user, c.Param("project_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", requirements)
}

func (h *ComplianceHandler) ApproveRequirement(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	requirement, err := h.service.ApproveRequirement(c.Request.Context(), user, c.Param("requirement_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "requirement approved", requirement)
}

// ========== Test cases ==========

func (h *ComplianceHandler) ListTestCases(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	testCases, err := h.service.ListTestCases(c.Request.Context(), user, c.Param("requirement_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", testCases)
}

func (h *ComplianceHandler) ReviewTestCase(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	var req domain.ReviewTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	testCase, err := h.service.ReviewTestCase(c.Request.Context(), user, c.Param("test_case_id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "review recorded", testCase)
}

func (h *ComplianceHandler) respondError(c *gin.Context, err error) {
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound):
		response.NotFound(c, "resource not found")
	case xerrors.Is(err, xerrors.ErrWrongTenant):
		// Cross-tenant probes look identical to missing resources
		response.NotFound(c, "resource not found")
	default:
		h.logger.Error("compliance operation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "operation failed", nil)
	}
}
