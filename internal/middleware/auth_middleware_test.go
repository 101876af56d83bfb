package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"compliancehub-service/internal/pkg/authz"
	"compliancehub-service/internal/pkg/jwt"
	"compliancehub-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	gen    *jwt.Generator
	mw     *AuthMiddleware
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	gen := jwt.NewGenerator(key, "compliancehub", "compliancehub-dashboard", "", time.Hour)
	ver := jwt.NewVerifier(&key.PublicKey, "compliancehub", "compliancehub-dashboard")
	mw := NewAuthMiddleware(ver, zap.NewNop())

	r := gin.New()
	r.Use(mw.Resolve())
	return &testEnv{gen: gen, mw: mw, router: r}
}

func (e *testEnv) token(t *testing.T, p jwt.SessionParams) string {
	t.Helper()
	signed, _, _, err := e.gen.GenerateSessionToken(p)
	require.NoError(t, err)
	return signed
}

func (e *testEnv) request(target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestResolveLeavesAnonymousRequestsAlone(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/open", func(c *gin.Context) {
		assert.Nil(t, CurrentUser(c))
		assert.False(t, IsAuthenticated(c))
		c.Status(http.StatusOK)
	})

	w := env.request("/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRedirectsAnonymousToSignIn(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/private", env.mw.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := env.request("/private", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RedirectSignIn, w.Header().Get("Location"))
}

func TestRequireAuthAdmitsValidToken(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/private", env.mw.RequireAuth(), func(c *gin.Context) {
		user := MustCurrentUser(c)
		c.String(http.StatusOK, user.ID)
	})

	token := env.token(t, jwt.SessionParams{UserID: "u1", Email: "qm@example.com"})
	w := env.request("/private", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestExpiredTokenIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/private", env.mw.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Same signing key, negative lifetime
	shortGen := *env.gen
	shortGen.Ttl = -time.Minute
	stale, _, _, err := shortGen.GenerateSessionToken(jwt.SessionParams{UserID: "u1"})
	require.NoError(t, err)

	w := env.request("/private", stale)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RedirectSignIn, w.Header().Get("Location"))
}

func TestGarbageTokenIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/private", env.mw.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := env.request("/private", "not-a-jwt")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestRequireRoleGrantsMatchingRole(t *testing.T) {
	env := newTestEnv(t)
	env.router.POST("/review",
		env.mw.RequireAuth(),
		env.mw.RequireRole(authz.RoleAdmin, authz.RoleTestReviewer),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	token := env.token(t, jwt.SessionParams{UserID: "u1", Roles: []string{"user", authz.RoleTestReviewer}})
	req := httptest.NewRequest(http.MethodPost, "/review", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleSendsWrongRoleToUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	gates := append(env.mw.AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })
	env.router.GET("/admin", gates...)

	token := env.token(t, jwt.SessionParams{UserID: "u1", Roles: []string{authz.RoleTestReviewer}})
	w := env.request("/admin", token)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RedirectUnauthorized, w.Header().Get("Location"),
		"an authenticated but unauthorized user must not land on sign-in")
}

func TestRequireOrganizationMatchesRouteParam(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/orgs/:org_id/projects",
		env.mw.RequireAuth(),
		env.mw.RequireOrganization(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	token := env.token(t, jwt.SessionParams{UserID: "u1", OrganizationID: "org-1"})

	w := env.request("/orgs/org-1/projects", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request("/orgs/org-2/projects", token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, RedirectUnauthorized, w.Header().Get("Location"))
}

func TestUserFromClaimsDefaults(t *testing.T) {
	user, err := UserFromClaims(&jwt.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{authz.RoleUser}, user.Roles, "missing roles default to user")
	assert.Empty(t, user.OrganizationID)

	_, err = UserFromClaims(&jwt.Claims{})
	assert.Error(t, err, "missing subject fails closed")
}
