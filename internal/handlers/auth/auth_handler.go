// internal/handlers/auth/auth_handler.go
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	"compliancehub-service/internal/identity"
	"compliancehub-service/internal/middleware"
	"compliancehub-service/internal/pkg/response"
	"compliancehub-service/internal/pkg/session"
	authUsecase "compliancehub-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stateCookie = "oauth-state"
	nonceCookie = "oauth-nonce"
	oauthTTL    = 10 * time.Minute
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	cookies     *session.CookieWriter
	dashboard   string // post-sign-in landing page
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookies *session.CookieWriter, dashboardURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		dashboard:   dashboardURL,
		logger:      logger,
	}
}

// ========== Sign up ==========

// SignUp creates a local account (public endpoint). No session is
// issued; the user signs in after verifying their email.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req domain.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	user, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("sign up failed", zap.String("email", req.Email), zap.Error(err))
		h.respondAuthError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "account created", user)
}

// ========== Sign in ==========

// SignIn authenticates credentials and sets the session cookie.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req domain.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	sess, err := h.authService.SignIn(c.Request.Context(), &req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.cookies.Set(c.Writer, sess.Token.Signed, sess.Token.ExpiresAt)
	response.Success(c, http.StatusOK, "signed in", domain.SessionResponse{
		User:      sess.User,
		ExpiresAt: sess.Token.ExpiresAt,
	})
}

// ========== Google sign-in ==========

// GoogleBegin starts the federated flow: state and nonce go into
// short-lived cookies, the browser goes to Google.
func (h *AuthHandler) GoogleBegin(c *gin.Context) {
	state, err := randomToken()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not start sign-in", err)
		return
	}
	nonce, err := randomToken()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "could not start sign-in", err)
		return
	}

	url, err := h.authService.GoogleAuthURL(state, nonce)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	h.setFlowCookie(c, stateCookie, state)
	h.setFlowCookie(c, nonceCookie, nonce)
	c.Redirect(http.StatusFound, url)
}

// GoogleCallback finishes the federated flow. A user who closed the
// Google window lands back on the sign-in page with no error surfaced.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, _ := c.Cookie(stateCookie)
	nonce, _ := c.Cookie(nonceCookie)

	// One-shot cookies: consumed now, cleared before any response writes
	h.clearFlowCookie(c, stateCookie)
	h.clearFlowCookie(c, nonceCookie)

	if state == "" || c.Query("state") != state {
		h.logger.Warn("google callback state mismatch", zap.String("ip", c.ClientIP()))
		c.Redirect(http.StatusSeeOther, middleware.RedirectSignIn)
		return
	}

	sess, err := h.authService.CompleteGoogleSignIn(
		c.Request.Context(),
		c.Query("error"),
		c.Query("code"),
		nonce,
		c.ClientIP(),
		c.GetHeader("User-Agent"),
	)
	if err != nil {
		h.logger.Warn("google sign in failed", zap.Error(err))
		c.Redirect(http.StatusSeeOther, middleware.RedirectSignIn)
		return
	}
	if sess == nil {
		// User cancelled the flow
		c.Redirect(http.StatusSeeOther, middleware.RedirectSignIn)
		return
	}

	h.cookies.Set(c.Writer, sess.Token.Signed, sess.Token.ExpiresAt)
	c.Redirect(http.StatusSeeOther, h.dashboard)
}

// ========== Sign out ==========

// SignOut ends the session. Idempotent: an anonymous caller still gets
// a cleared cookie and a 200.
func (h *AuthHandler) SignOut(c *gin.Context) {
	user := middleware.CurrentUser(c)
	jti := middleware.CurrentJTI(c)

	if err := h.authService.SignOut(c.Request.Context(), user, jti); err != nil {
		h.logger.Error("sign out bookkeeping failed", zap.Error(err))
	}

	h.cookies.Clear(c.Writer)
	response.Success(c, http.StatusOK, "signed out", nil)
}

// ========== Password reset ==========

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req domain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "if the address is registered, a reset email is on its way", nil)
}

type completeResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) CompletePasswordReset(c *gin.Context) {
	var req completeResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.authService.CompletePasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondAuthError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "password updated", nil)
}

// ========== Email verification ==========

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.ValidationError(c, "missing verification token", nil)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		h.respondAuthError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "email verified", nil)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	if err := h.authService.ResendVerificationEmail(c.Request.Context(), user); err != nil {
		h.respondAuthError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "verification email sent", nil)
}

// ========== Profile ==========

// GetMe returns the resolved principal for the session cookie.
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.MustCurrentUser(c)
	response.Success(c, http.StatusOK, "", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := middleware.MustCurrentUser(c)

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user, &req)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated", updated)
}

// respondAuthError maps identity error codes to HTTP statuses. The
// body carries the user-facing message only; causes stay in logs.
func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	msg := authUsecase.UserMessage(err)

	var status int
	switch identity.CodeOf(err) {
	case identity.CodeInvalidCredential, identity.CodeUserNotFound:
		status = http.StatusUnauthorized
	case identity.CodeUserDisabled:
		status = http.StatusForbidden
	case identity.CodeEmailInUse:
		status = http.StatusConflict
	case identity.CodeWeakPassword, identity.CodeInvalidEmail:
		status = http.StatusBadRequest
	case identity.CodeTooManyRequests:
		status = http.StatusTooManyRequests
	case identity.CodeNetworkFailure:
		status = http.StatusBadGateway
	case identity.CodeUnconfigured:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	response.Error(c, status, msg, nil)
}

func (h *AuthHandler) setFlowCookie(c *gin.Context, name, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(oauthTTL.Seconds()), "/", "", h.cookies.Secure(), true)
}

func (h *AuthHandler) clearFlowCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", h.cookies.Secure(), true)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
