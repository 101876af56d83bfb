// internal/handlers/admin/admin_handler.go
package admin

import (
	"net/http"

	"compliancehub-service/internal/pkg/response"
	"compliancehub-service/internal/pkg/session"
	"compliancehub-service/internal/repository/postgres"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the admin dashboard's read views. The session
// listing is observational: it reflects Redis bookkeeping, not token
// validity.
type AdminHandler struct {
	accounts *postgres.AccountRepository
	tracker  *session.Tracker
	logger   *zap.Logger
}

func NewAdminHandler(accounts *postgres.AccountRepository, tracker *session.Tracker, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		tracker:  tracker,
		logger:   logger,
	}
}

// ListActiveSessions returns every tracked session across tenants.
func (h *AdminHandler) ListActiveSessions(c *gin.Context) {
	sessions, err := h.tracker.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list sessions", nil)
		return
	}

	response.Success(c, http.StatusOK, "", sessions)
}

// ListUserSessions returns the tracked sessions for one user.
func (h *AdminHandler) ListUserSessions(c *gin.Context) {
	sessions, err := h.tracker.ListByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.logger.Error("failed to list sessions", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list sessions", nil)
		return
	}

	response.Success(c, http.StatusOK, "", sessions)
}

// ListOrganizationUsers returns the accounts of one tenant.
func (h *AdminHandler) ListOrganizationUsers(c *gin.Context) {
	accounts, err := h.accounts.ListByOrganization(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list accounts", nil)
		return
	}

	response.Success(c, http.StatusOK, "", accounts)
}
