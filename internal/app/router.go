// internal/app/router.go
package app

import (
	adminHandler "compliancehub-service/internal/handlers/admin"
	authHandler "compliancehub-service/internal/handlers/auth"
	complianceHandler "compliancehub-service/internal/handlers/compliance"
	wsHandler "compliancehub-service/internal/handlers/websocket"
	"compliancehub-service/internal/middleware"
	"compliancehub-service/internal/pkg/authz"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	ComplianceHandler *complianceHandler.ComplianceHandler
	AdminHandler      *adminHandler.AdminHandler
	WSHandler         *wsHandler.WebSocketHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// Every request passes the resolver; gates are applied per group.
	r.Use(h.AuthMiddleware.Resolve())

	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/signup", h.AuthHandler.SignUp)
		authPublic.POST("/signin", h.AuthHandler.SignIn)
		authPublic.GET("/google", h.AuthHandler.GoogleBegin)
		authPublic.GET("/google/callback", h.AuthHandler.GoogleCallback)
		authPublic.POST("/reset-password", h.AuthHandler.ResetPassword)
		authPublic.POST("/reset-password/complete", h.AuthHandler.CompletePasswordReset)
		authPublic.GET("/verify-email", h.AuthHandler.VerifyEmail)
		// Idempotent for anonymous callers, so no auth gate
		authPublic.POST("/signout", h.AuthHandler.SignOut)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.RequireAuth())
	{
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.PUT("/profile", h.AuthHandler.UpdateProfile)
		authProtected.POST("/resend-verification", h.AuthHandler.ResendVerification)
	}

	// ==================== Compliance Projects ====================
	orgs := api.Group("/orgs/:org_id")
	orgs.Use(h.AuthMiddleware.RequireAuth(), h.AuthMiddleware.RequireOrganization())
	{
		orgs.GET("/projects", h.ComplianceHandler.ListProjects)
		// Gate role sets mirror the authz guard predicates
		orgs.POST("/projects",
			h.AuthMiddleware.RequireRole(
				authz.RoleAdmin, authz.RoleProjectManager, authz.RoleTechnicalLead,
			),
			h.ComplianceHandler.CreateProject,
		)
		orgs.DELETE("/projects/:project_id",
			h.AuthMiddleware.RequireRole(
				authz.RoleAdmin, authz.RoleProjectManager, authz.RoleTechnicalLead,
			),
			h.ComplianceHandler.ArchiveProject,
		)

		orgs.GET("/projects/:project_id/requirements", h.ComplianceHandler.ListRequirements)
		orgs.POST("/requirements/:requirement_id/approve",
			h.AuthMiddleware.RequireRole(
				authz.RoleAdmin, authz.RoleQualityManager, authz.RoleComplianceOfficer,
			),
			h.ComplianceHandler.ApproveRequirement,
		)

		orgs.GET("/requirements/:requirement_id/test-cases", h.ComplianceHandler.ListTestCases)
		orgs.POST("/test-cases/:test_case_id/review",
			h.AuthMiddleware.RequireRole(
				authz.RoleAdmin, authz.RoleQualityManager,
				authz.RoleTestReviewer, authz.RoleComplianceOfficer,
			),
			h.ComplianceHandler.ReviewTestCase,
		)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/sessions", h.AdminHandler.ListActiveSessions)
		admin.GET("/users/:user_id/sessions", h.AdminHandler.ListUserSessions)
		admin.GET("/orgs/:org_id/users", h.AdminHandler.ListOrganizationUsers)
	}

	// ==================== WebSocket ====================
	wsGroup := r.Group("/ws")
	wsGroup.Use(h.AuthMiddleware.AdminOnly()...)
	{
		wsGroup.GET("/sessions", h.WSHandler.StreamSessionEvents)
	}
}
