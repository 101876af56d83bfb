// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	"compliancehub-service/internal/identity"
	xerrors "compliancehub-service/internal/pkg/errors"
	"compliancehub-service/internal/pkg/session"

	"go.uber.org/zap"
)

// Notifier surfaces a transient user-facing notification. Best effort,
// never awaited by the operation that triggered it.
type Notifier interface {
	Notify(message string)
}

// SessionEventPublisher feeds the admin session-activity stream.
// Implementations must not block.
type SessionEventPublisher interface {
	Publish(ev domain.SessionEvent)
}

// Throttle gates sign-in and password-reset attempts. Satisfied by
// session.RateLimiter; nil disables throttling.
type Throttle interface {
	CheckSignInAttempt(ctx context.Context, ip, email string) (bool, int64, error)
	ResetSignInAttempts(ctx context.Context, ip, email string) error
	CheckPasswordResetAttempt(ctx context.Context, email string) (bool, error)
}

var _ Throttle = (*session.RateLimiter)(nil)

// Config carries the service's policy switches.
type Config struct {
	// MaskResetEnumeration makes password-reset responses
	// indistinguishable for existing and unknown accounts.
	MaskResetEnumeration bool
}

// AuthService is the single source of truth for session operations and
// the only component permitted to invoke provider mutations. All state
// it reports flows from the provider, never from optimistic local
// bookkeeping.
type AuthService struct {
	provider    identity.Provider
	google      *identity.GoogleAuthenticator
	tracker     *session.Tracker
	rateLimiter Throttle
	events      SessionEventPublisher
	notifier    Notifier
	cfg         Config
	logger      *zap.Logger
}

func NewAuthService(
	provider identity.Provider,
	google *identity.GoogleAuthenticator,
	tracker *session.Tracker,
	rateLimiter Throttle,
	events SessionEventPublisher,
	notifier Notifier,
	cfg Config,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		provider:    provider,
		google:      google,
		tracker:     tracker,
		rateLimiter: rateLimiter,
		events:      events,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

// ========== Sign in / sign up ==========

// SignIn authenticates credentials against the provider. On failure the
// mapped message is surfaced exactly once and the tagged error returned;
// session state is untouched. On success the caller (the one cookie
// writer) persists the returned token.
func (s *AuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*identity.Session, error) {
	if s.rateLimiter != nil {
		allowed, _, err := s.rateLimiter.CheckSignInAttempt(ctx, req.IPAddress, req.Email)
		if err != nil {
			s.logger.Error("sign-in rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			rateErr := identity.E(identity.CodeTooManyRequests, xerrors.ErrRateLimited)
			s.reportFailure(rateErr)
			return nil, rateErr
		}
	}

	sess, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}

	if s.rateLimiter != nil {
		s.rateLimiter.ResetSignInAttempts(ctx, req.IPAddress, req.Email)
	}

	s.recordSession(ctx, sess, req.IPAddress, req.UserAgent)
	return sess, nil
}

// SignUp creates a new principal. The provider sends the verification
// email; no authenticated state is assumed until it reports a sign-in.
func (s *AuthService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.User, error) {
	user, err := s.provider.CreateAccount(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return user, nil
}

// ========== Federated sign-in ==========

// GoogleAuthURL starts a federated flow with email and profile scopes.
func (s *AuthService) GoogleAuthURL(state, nonce string) (string, error) {
	url, err := s.google.AuthURL(state, nonce)
	if err != nil {
		s.reportFailure(err)
		return "", err
	}
	return url, nil
}

// CompleteGoogleSignIn finishes the federated flow. A user-cancelled
// flow returns (nil, nil): no session, no notification. Every other
// failure surfaces its mapped message exactly once.
func (s *AuthService) CompleteGoogleSignIn(ctx context.Context, errorParam, code, nonce, ip, userAgent string) (*identity.Session, error) {
	if identity.IsCancellation(errorParam) {
		return nil, nil
	}
	if errorParam != "" {
		err := identity.E(identity.CodeUnknown, fmt.Errorf("federated sign-in failed: %s", errorParam))
		s.reportFailure(err)
		return nil, err
	}

	fi, err := s.google.Exchange(ctx, code, nonce)
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}

	sess, err := s.provider.FederatedSignIn(ctx, *fi)
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}

	s.recordSession(ctx, sess, ip, userAgent)
	return sess, nil
}

// ========== Sign out ==========

// SignOut ends the session identified by the resolved user and token id.
// Idempotent: signing out an already-anonymous request is a no-op.
func (s *AuthService) SignOut(ctx context.Context, user *domain.User, jti string) error {
	if user == nil {
		return nil
	}

	if s.tracker != nil && jti != "" {
		if err := s.tracker.Remove(ctx, user.ID, jti); err != nil {
			s.logger.Error("failed to remove session record", zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.Publish(domain.SessionEvent{
			Type:   domain.SessionEventSignedOut,
			UserID: user.ID,
			Email:  user.Email,
			JTI:    jti,
			At:     time.Now(),
		})
	}

	s.logger.Info("user signed out", zap.String("user_id", user.ID))
	return nil
}

// ========== Password reset ==========

// ResetPassword triggers a reset email. With enumeration masking on
// (the default), unknown addresses report success identically to known
// ones; malformed addresses still fail with the mapped message.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if s.rateLimiter != nil {
		allowed, err := s.rateLimiter.CheckPasswordResetAttempt(ctx, email)
		if err != nil {
			s.logger.Error("reset rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			rateErr := identity.E(identity.CodeTooManyRequests, xerrors.ErrRateLimited)
			s.reportFailure(rateErr)
			return rateErr
		}
	}

	err := s.provider.SendPasswordReset(ctx, email)
	if err == nil {
		return nil
	}

	if s.cfg.MaskResetEnumeration && identity.IsCode(err, identity.CodeUserNotFound) {
		s.logger.Info("password reset requested for unknown address")
		return nil
	}

	s.reportFailure(err)
	return err
}

// CompletePasswordReset consumes a reset token.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if err := s.provider.CompletePasswordReset(ctx, token, newPassword); err != nil {
		s.reportFailure(err)
		return err
	}
	return nil
}

// ========== Profile ==========

// UpdateProfile changes provider-held profile fields for the signed-in
// principal. Precondition: a resolved user; fails fast otherwise.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, req *domain.UpdateProfileRequest) (*domain.User, error) {
	if user == nil {
		return nil, xerrors.ErrNoPrincipal
	}

	updated, err := s.provider.UpdateProfile(ctx, user.ID, req)
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}
	return updated, nil
}

// ResendVerificationEmail re-sends verification to the signed-in address.
func (s *AuthService) ResendVerificationEmail(ctx context.Context, user *domain.User) error {
	if user == nil {
		return xerrors.ErrNoPrincipal
	}

	if err := s.provider.SendEmailVerification(ctx, user.ID); err != nil {
		s.reportFailure(err)
		return err
	}
	return nil
}

// VerifyEmail consumes an email-verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if err := s.provider.VerifyEmail(ctx, token); err != nil {
		s.reportFailure(err)
		return err
	}
	return nil
}

// ========== helpers ==========

// reportFailure surfaces a mapped message exactly once per failure.
// Suppressed codes (flow cancellation) never reach the notifier.
func (s *AuthService) reportFailure(err error) {
	if err == nil || Suppressed(err) {
		return
	}
	if s.notifier != nil {
		s.notifier.Notify(UserMessage(err))
	}
}

// recordSession stores the observational record and publishes the
// signed-in event. Failures are logged, never propagated: bookkeeping
// must not break a successful sign-in.
func (s *AuthService) recordSession(ctx context.Context, sess *identity.Session, ip, userAgent string) {
	if s.tracker != nil {
		record := &domain.ActiveSession{
			JTI:            sess.Token.JTI,
			UserID:         sess.User.ID,
			Email:          sess.User.Email,
			OrganizationID: sess.User.OrganizationID,
			IPAddress:      ip,
			UserAgent:      userAgent,
			LoginAt:        time.Now(),
			ExpiresAt:      sess.Token.ExpiresAt,
		}
		if err := s.tracker.Record(ctx, record); err != nil {
			s.logger.Error("failed to record active session", zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.Publish(domain.SessionEvent{
			Type:           domain.SessionEventSignedIn,
			UserID:         sess.User.ID,
			Email:          sess.User.Email,
			OrganizationID: sess.User.OrganizationID,
			JTI:            sess.Token.JTI,
			At:             time.Now(),
		})
	}

	s.logger.Info("user signed in",
		zap.String("user_id", sess.User.ID),
		zap.String("email", sess.User.Email),
	)
}

// LogNotifier is the default Notifier: it records the message so the
// HTTP layer's transient-notification channel stays observable in logs.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) Notify(message string) {
	n.Logger.Info("user notification", zap.String("message", message))
}
