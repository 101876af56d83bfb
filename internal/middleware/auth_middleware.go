// internal/middleware/auth_middleware.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	"compliancehub-service/internal/pkg/authz"
	"compliancehub-service/internal/pkg/jwt"
	"compliancehub-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Redirect targets consumed by the gates. Authorization failures land on
// a page distinct from unauthenticated ones.
const (
	RedirectSignIn       = "/auth/signin"
	RedirectUnauthorized = "/unauthorized"
)

const (
	ctxUserKey = "session_user"
	ctxJTIKey  = "session_jti"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier *jwt.Verifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// Resolve reconstructs the session user from the request cookie. An
// absent cookie means an anonymous request, not an error. A token that
// fails verification (expired, malformed, bad signature) is likewise
// anonymous: there is no fallback low-privilege identity. Resolve never
// aborts; the gates below decide what anonymity means per route.
func (m *AuthMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.ReadToken(c.Request)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Debug("session token rejected", zap.Error(err))
			c.Next()
			return
		}

		user, err := UserFromClaims(claims)
		if err != nil {
			// Malformed claims on a verified token fail closed:
			// no partially-populated user ever reaches a handler.
			m.logger.Warn("verified token with malformed claims", zap.Error(err))
			c.Next()
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxJTIKey, claims.ID)
		c.Next()
	}
}

// RequireAuth gates routes that need a signed-in principal. Anonymous
// requests are redirected to sign-in before any protected data is read.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusSeeOther, RedirectSignIn)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole gates routes on role membership. Must follow RequireAuth
// in the chain. An authenticated user without any of the required roles
// is sent to the unauthorized page, distinguishable from unauthenticated.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusSeeOther, RedirectSignIn)
			c.Abort()
			return
		}

		if !authz.HasAnyRole(user, roles...) {
			m.logger.Info("role gate rejected request",
				zap.String("user_id", user.ID),
				zap.Strings("required_roles", roles),
				zap.Strings("user_roles", user.Roles),
				zap.String("path", c.Request.URL.Path),
			)
			c.Redirect(http.StatusSeeOther, RedirectUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireOrganization gates tenant-scoped routes: the session's
// organization must equal the org_id route parameter.
func (m *AuthMiddleware) RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Redirect(http.StatusSeeOther, RedirectSignIn)
			c.Abort()
			return
		}

		orgID := c.Param("org_id")
		if orgID == "" || user.OrganizationID != orgID {
			m.logger.Info("organization gate rejected request",
				zap.String("user_id", user.ID),
				zap.String("requested_org", orgID),
			)
			c.Redirect(http.StatusSeeOther, RedirectUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminOnly composes the resolver gates for admin routes.
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireAuth(),
		m.RequireRole(authz.RoleAdmin, authz.RoleSystemAdmin),
	}
}

// UserFromClaims maps verified token claims to the session User. Roles
// default to ["user"] and organization to empty when the claims omit
// them; a missing subject is the one malformation that fails closed.
func UserFromClaims(claims *jwt.Claims) (*domain.User, error) {
	if claims.Subject == "" {
		return nil, fmt.Errorf("claims have no subject")
	}

	roles := claims.Roles
	if len(roles) == 0 {
		roles = []string{authz.RoleUser}
	}

	createdAt := time.Now()
	if claims.IssuedAt != nil {
		createdAt = claims.IssuedAt.Time
	}

	return &domain.User{
		ID:             claims.Subject,
		Email:          claims.Email,
		Name:           claims.Name,
		Image:          claims.Picture,
		EmailVerified:  claims.EmailVerified,
		Roles:          roles,
		OrganizationID: claims.OrganizationID,
		CreatedAt:      createdAt,
		UpdatedAt:      time.Now(),
	}, nil
}
