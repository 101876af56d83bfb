// internal/identity/local.go
package identity

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"net/mail"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	xerrors "compliancehub-service/internal/pkg/errors"
	"compliancehub-service/internal/pkg/jwt"
	"compliancehub-service/internal/repository/postgres"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8

	tokenTypePasswordReset = "password_reset"
	tokenTypeEmailVerify   = "email_verify"

	resetTokenTTL  = 1 * time.Hour
	verifyTokenTTL = 24 * time.Hour
)

// Mailer delivers provider emails. Satisfied by the SMTP sender.
type Mailer interface {
	Send(to, subject, bodyHTML string) error
}

// LocalProvider is the credential-verifying identity provider backed by
// Postgres accounts and bcrypt password hashes. It is the only component
// that issues signed session tokens.
type LocalProvider struct {
	accounts *postgres.AccountRepository
	tokens   *jwt.Manager
	mailer   Mailer
	baseURL  string
	logger   *zap.Logger
}

func NewLocalProvider(
	accounts *postgres.AccountRepository,
	tokens *jwt.Manager,
	mailer Mailer,
	baseURL string,
	logger *zap.Logger,
) *LocalProvider {
	return &LocalProvider{
		accounts: accounts,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Authenticate verifies email/password and issues a session token.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, E(CodeInvalidEmail, err)
	}

	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, E(CodeUserNotFound, err)
		}
		return nil, E(CodeNetworkFailure, err)
	}

	if account.Status == "disabled" {
		return nil, E(CodeUserDisabled, nil)
	}

	if !account.PasswordHash.Valid {
		// Federated-only account, no local credential exists
		return nil, E(CodeInvalidCredential, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash.String), []byte(password)); err != nil {
		return nil, E(CodeInvalidCredential, err)
	}

	if err := p.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		p.logger.Error("failed to update last login", zap.String("account_id", account.ID), zap.Error(err))
	}

	return p.issueSession(account, "local")
}

// CreateAccount registers a new principal and sends verification mail.
// The account is not signed in; callers wait for Authenticate.
func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, name string) (*domain.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, E(CodeInvalidEmail, err)
	}
	if len(password) < minPasswordLength {
		return nil, E(CodeWeakPassword, fmt.Errorf("password shorter than %d characters", minPasswordLength))
	}

	exists, err := p.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, E(CodeNetworkFailure, err)
	}
	if exists {
		return nil, E(CodeEmailInUse, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, E(CodeUnknown, err)
	}

	account := &domain.Account{
		ID:           newAccountID(),
		Email:        email,
		FullName:     sql.NullString{String: name, Valid: name != ""},
		PasswordHash: sql.NullString{String: string(hash), Valid: true},
		Provider:     "local",
		Roles:        []string{"user"},
		Status:       "active",
	}

	if err := p.accounts.Create(ctx, account); err != nil {
		return nil, E(CodeNetworkFailure, err)
	}

	if err := p.sendVerificationMail(ctx, account); err != nil {
		// Registration stands even when the mail fails
		p.logger.Error("failed to send verification email",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}

	user := userFromAccount(account)
	return &user, nil
}

// FederatedSignIn issues a session for an OIDC-verified principal,
// creating or linking the local account record as needed.
func (p *LocalProvider) FederatedSignIn(ctx context.Context, f FederatedIdentity) (*Session, error) {
	account, err := p.accounts.FindByProviderSubject(ctx, f.Provider, f.Subject)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, E(CodeNetworkFailure, err)
	}

	if account == nil {
		// Fall back to email linking before creating a fresh account
		account, err = p.accounts.FindByEmail(ctx, f.Email)
		if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, E(CodeNetworkFailure, err)
		}
	}

	if account == nil {
		account = &domain.Account{
			ID:             newAccountID(),
			Email:          f.Email,
			EmailVerified:  f.EmailVerified,
			FullName:       sql.NullString{String: f.Name, Valid: f.Name != ""},
			AvatarURL:      sql.NullString{String: f.Picture, Valid: f.Picture != ""},
			Provider:       f.Provider,
			ProviderUserID: sql.NullString{String: f.Subject, Valid: true},
			Roles:          []string{"user"},
			Status:         "active",
		}
		if err := p.accounts.Create(ctx, account); err != nil {
			return nil, E(CodeNetworkFailure, err)
		}
	}

	if account.Status == "disabled" {
		return nil, E(CodeUserDisabled, nil)
	}

	if err := p.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
		p.logger.Error("failed to update last login", zap.String("account_id", account.ID), zap.Error(err))
	}

	return p.issueSession(account, f.Provider)
}

// SendPasswordReset sends a reset link. Reports CodeUserNotFound for
// unknown addresses; masking that is the caller's policy.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return E(CodeInvalidEmail, err)
	}

	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return E(CodeUserNotFound, err)
		}
		return E(CodeNetworkFailure, err)
	}

	token := generateOpaqueToken()
	vt := &domain.VerificationToken{
		AccountID: account.ID,
		TokenType: tokenTypePasswordReset,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := p.accounts.CreateVerificationToken(ctx, vt); err != nil {
		return E(CodeNetworkFailure, err)
	}

	link := fmt.Sprintf("%s/auth/reset-password?token=%s", p.baseURL, token)
	body := fmt.Sprintf(`<p>Hello %s,</p>
		<p>A password reset was requested for your account.</p>
		<p><a class="button" href=%q>Reset password</a></p>
		<p>The link expires in one hour. If you did not request this, you can ignore this email.</p>`,
		displayName(account), link)

	if err := p.mailer.Send(account.Email, "Reset your password", body); err != nil {
		return E(CodeNetworkFailure, err)
	}
	return nil
}

// CompletePasswordReset consumes a reset token and stores the new hash.
func (p *LocalProvider) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return E(CodeWeakPassword, fmt.Errorf("password shorter than %d characters", minPasswordLength))
	}

	vt, err := p.accounts.ConsumeVerificationToken(ctx, tokenTypePasswordReset, token, time.Now())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return E(CodeInvalidCredential, fmt.Errorf("reset token invalid or expired"))
		}
		return E(CodeNetworkFailure, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return E(CodeUnknown, err)
	}

	if err := p.accounts.UpdatePasswordHash(ctx, vt.AccountID, string(hash)); err != nil {
		return E(CodeNetworkFailure, err)
	}
	return nil
}

// UpdateProfile changes display name and avatar only.
func (p *LocalProvider) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	account, err := p.accounts.UpdateProfile(ctx, userID, req.Name, req.PhotoURL)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, E(CodeUserNotFound, err)
		}
		return nil, E(CodeNetworkFailure, err)
	}
	user := userFromAccount(account)
	return &user, nil
}

// SendEmailVerification re-sends the verification mail.
func (p *LocalProvider) SendEmailVerification(ctx context.Context, userID string) error {
	account, err := p.accounts.FindByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return E(CodeUserNotFound, err)
		}
		return E(CodeNetworkFailure, err)
	}
	return p.sendVerificationMail(ctx, account)
}

// VerifyEmail consumes an email-verification token.
func (p *LocalProvider) VerifyEmail(ctx context.Context, token string) error {
	vt, err := p.accounts.ConsumeVerificationToken(ctx, tokenTypeEmailVerify, token, time.Now())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return E(CodeInvalidCredential, fmt.Errorf("verification token invalid or expired"))
		}
		return E(CodeNetworkFailure, err)
	}
	if err := p.accounts.MarkEmailVerified(ctx, vt.AccountID); err != nil {
		return E(CodeNetworkFailure, err)
	}
	return nil
}

// GetAccount returns the backing record for an authenticated id.
func (p *LocalProvider) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := p.accounts.FindByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, E(CodeUserNotFound, err)
		}
		return nil, E(CodeNetworkFailure, err)
	}
	return account, nil
}

// ========== helpers ==========

func (p *LocalProvider) issueSession(account *domain.Account, via string) (*Session, error) {
	signed, jti, expiresAt, err := p.tokens.Generator.GenerateSessionToken(jwt.SessionParams{
		UserID:         account.ID,
		Email:          account.Email,
		EmailVerified:  account.EmailVerified,
		Name:           displayName(account),
		Picture:        account.AvatarURL.String,
		Roles:          account.Roles,
		OrganizationID: account.OrganizationID.String,
		Provider:       via,
	})
	if err != nil {
		return nil, E(CodeUnknown, err)
	}

	return &Session{
		Token: Token{Signed: signed, JTI: jti, ExpiresAt: expiresAt},
		User:  userFromAccount(account),
	}, nil
}

func (p *LocalProvider) sendVerificationMail(ctx context.Context, account *domain.Account) error {
	token := generateOpaqueToken()
	vt := &domain.VerificationToken{
		AccountID: account.ID,
		TokenType: tokenTypeEmailVerify,
		Token:     token,
		ExpiresAt: time.Now().Add(verifyTokenTTL),
	}
	if err := p.accounts.CreateVerificationToken(ctx, vt); err != nil {
		return E(CodeNetworkFailure, err)
	}

	link := fmt.Sprintf("%s/auth/verify-email?token=%s", p.baseURL, token)
	body := fmt.Sprintf(`<p>Hello %s,</p>
		<p>Please confirm your email address.</p>
		<p><a class="button" href=%q>Verify email</a></p>
		<p>The link expires in 24 hours.</p>`,
		displayName(account), link)

	if err := p.mailer.Send(account.Email, "Verify your email", body); err != nil {
		return E(CodeNetworkFailure, err)
	}
	return nil
}

func userFromAccount(a *domain.Account) domain.User {
	roles := a.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}
	return domain.User{
		ID:             a.ID,
		Email:          a.Email,
		Name:           displayName(a),
		Image:          a.AvatarURL.String,
		EmailVerified:  a.EmailVerified,
		Roles:          roles,
		OrganizationID: a.OrganizationID.String,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func displayName(a *domain.Account) string {
	if a.FullName.Valid {
		return a.FullName.String
	}
	return a.Email
}

func newAccountID() string {
	return ulid.Make().String()
}

func generateOpaqueToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
