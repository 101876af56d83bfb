// internal/identity/provider.go
package identity

import (
	"context"
	"time"

	domain "compliancehub-service/internal/domain/identity"
)

// Token is a signed session token issued by the provider. The signed
// value is opaque to everything but the verifier.
type Token struct {
	Signed    string
	JTI       string
	ExpiresAt time.Time
}

// Session pairs an issued token with the principal it asserts.
type Session struct {
	Token Token
	User  domain.User
}

// Provider is the external identity collaborator: it authenticates
// credentials, owns account records, and issues signed session tokens.
// Implementations report failures as *identity.Error so callers can map
// codes without inspecting provider internals.
type Provider interface {
	// Authenticate verifies credentials and issues a session token.
	Authenticate(ctx context.Context, email, password string) (*Session, error)

	// CreateAccount registers a new principal, sets the display name,
	// and sends a verification email. It does not sign the account in.
	CreateAccount(ctx context.Context, email, password, name string) (*domain.User, error)

	// FederatedSignIn issues a session for an externally verified
	// principal (OIDC), creating the account on first sign-in.
	FederatedSignIn(ctx context.Context, f FederatedIdentity) (*Session, error)

	// SendPasswordReset sends a reset email. Returns CodeUserNotFound
	// when no account exists; enumeration masking is the caller's policy
	// decision, not the provider's.
	SendPasswordReset(ctx context.Context, email string) error

	// CompletePasswordReset consumes a reset token and replaces the
	// stored credential.
	CompletePasswordReset(ctx context.Context, token, newPassword string) error

	// VerifyEmail consumes an email-verification token.
	VerifyEmail(ctx context.Context, token string) error

	// UpdateProfile changes provider-held profile fields only. Role and
	// organization claims are never writable through this path.
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error)

	// SendEmailVerification re-sends verification mail for an account.
	SendEmailVerification(ctx context.Context, userID string) error

	// GetAccount returns the backing account for an authenticated id.
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
}

// FederatedIdentity carries the claims a federated identity provider
// asserted about a principal after ID-token verification.
type FederatedIdentity struct {
	Provider      string // e.g. "google"
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
