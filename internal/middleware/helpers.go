// internal/middleware/helpers.go
package middleware

import (
	domain "compliancehub-service/internal/domain/identity"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the resolved session user, or nil for anonymous
// requests. Callers that may serve anonymous traffic use this directly.
func CurrentUser(c *gin.Context) *domain.User {
	v, exists := c.Get(ctxUserKey)
	if !exists {
		return nil
	}

	user, ok := v.(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// MustCurrentUser returns the session user or panics. Only for handlers
// behind RequireAuth, where anonymity is impossible.
func MustCurrentUser(c *gin.Context) *domain.User {
	user := CurrentUser(c)
	if user == nil {
		panic("session user not found in context")
	}
	return user
}

// CurrentJTI returns the token id of the resolved session, or "".
func CurrentJTI(c *gin.Context) string {
	v, exists := c.Get(ctxJTIKey)
	if !exists {
		return ""
	}

	jti, ok := v.(string)
	if !ok {
		return ""
	}
	return jti
}

// IsAuthenticated reports whether the request carries a resolved user.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUser(c) != nil
}
