// internal/identity/providerfake/fake_provider.go
package providerfake

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	"compliancehub-service/internal/identity"
	"compliancehub-service/internal/pkg/jwt"

	"github.com/oklog/ulid/v2"
)

var _ identity.Provider = (*FakeProvider)(nil)

// Account is an in-memory principal seeded into the fake.
type Account struct {
	ID            string
	Email         string
	Password      string
	Name          string
	Picture       string
	Roles         []string
	OrgID         string
	EmailVerified bool
	Disabled      bool
}

// FakeProvider is an in-memory identity provider double. When a token
// generator is supplied it issues genuinely signed tokens, so resolver
// round-trip tests exercise real verification.
type FakeProvider struct {
	gen  *jwt.Generator
	lock sync.RWMutex

	accounts map[string]*Account // keyed by email

	// Error injection, checked before any other behavior
	AuthenticateErr  error
	CreateAccountErr error
	ResetErr         error

	// Call records for assertions
	ResetEmails         []string
	VerificationSends   []string
	ProfileUpdates      []string
	ConsumedResetTokens []string
}

func NewFakeProvider(gen *jwt.Generator) *FakeProvider {
	return &FakeProvider{
		gen:      gen,
		accounts: make(map[string]*Account),
	}
}

// Seed registers an account without any of CreateAccount's side effects.
func (f *FakeProvider) Seed(a Account) *Account {
	f.lock.Lock()
	defer f.lock.Unlock()

	if a.ID == "" {
		a.ID = ulid.Make().String()
	}
	if len(a.Roles) == 0 {
		a.Roles = []string{"user"}
	}
	f.accounts[a.Email] = &a
	return &a
}

func (f *FakeProvider) Authenticate(ctx context.Context, email, password string) (*identity.Session, error) {
	if f.AuthenticateErr != nil {
		return nil, f.AuthenticateErr
	}

	f.lock.RLock()
	a, ok := f.accounts[email]
	f.lock.RUnlock()

	if !ok {
		return nil, identity.E(identity.CodeUserNotFound, nil)
	}
	if a.Disabled {
		return nil, identity.E(identity.CodeUserDisabled, nil)
	}
	if a.Password != password {
		return nil, identity.E(identity.CodeInvalidCredential, nil)
	}

	return f.issue(a)
}

func (f *FakeProvider) CreateAccount(ctx context.Context, email, password, name string) (*domain.User, error) {
	if f.CreateAccountErr != nil {
		return nil, f.CreateAccountErr
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, identity.E(identity.CodeInvalidEmail, err)
	}
	if len(password) < 8 {
		return nil, identity.E(identity.CodeWeakPassword, nil)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	if _, exists := f.accounts[email]; exists {
		return nil, identity.E(identity.CodeEmailInUse, nil)
	}

	a := &Account{
		ID:       ulid.Make().String(),
		Email:    email,
		Password: password,
		Name:     name,
		Roles:    []string{"user"},
	}
	f.accounts[email] = a
	f.VerificationSends = append(f.VerificationSends, email)

	u := f.user(a)
	return &u, nil
}

func (f *FakeProvider) FederatedSignIn(ctx context.Context, fi identity.FederatedIdentity) (*identity.Session, error) {
	f.lock.Lock()
	a, ok := f.accounts[fi.Email]
	if !ok {
		a = &Account{
			ID:            ulid.Make().String(),
			Email:         fi.Email,
			Name:          fi.Name,
			Picture:       fi.Picture,
			Roles:         []string{"user"},
			EmailVerified: fi.EmailVerified,
		}
		f.accounts[fi.Email] = a
	}
	f.lock.Unlock()

	if a.Disabled {
		return nil, identity.E(identity.CodeUserDisabled, nil)
	}
	return f.issue(a)
}

func (f *FakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	if f.ResetErr != nil {
		return f.ResetErr
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return identity.E(identity.CodeInvalidEmail, err)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.accounts[email]; !ok {
		return identity.E(identity.CodeUserNotFound, nil)
	}
	f.ResetEmails = append(f.ResetEmails, email)
	return nil
}

func (f *FakeProvider) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return identity.E(identity.CodeWeakPassword, nil)
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.ConsumedResetTokens = append(f.ConsumedResetTokens, token)
	return nil
}

func (f *FakeProvider) VerifyEmail(ctx context.Context, token string) error {
	return nil
}

func (f *FakeProvider) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, a := range f.accounts {
		if a.ID != userID {
			continue
		}
		if req.Name != nil {
			a.Name = *req.Name
		}
		if req.PhotoURL != nil {
			a.Picture = *req.PhotoURL
		}
		f.ProfileUpdates = append(f.ProfileUpdates, userID)
		u := f.user(a)
		return &u, nil
	}
	return nil, identity.E(identity.CodeUserNotFound, nil)
}

func (f *FakeProvider) SendEmailVerification(ctx context.Context, userID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, a := range f.accounts {
		if a.ID == userID {
			f.VerificationSends = append(f.VerificationSends, a.Email)
			return nil
		}
	}
	return identity.E(identity.CodeUserNotFound, nil)
}

func (f *FakeProvider) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	for _, a := range f.accounts {
		if a.ID == userID {
			return &domain.Account{
				ID:            a.ID,
				Email:         a.Email,
				EmailVerified: a.EmailVerified,
				Provider:      "local",
				Roles:         a.Roles,
				Status:        "active",
			}, nil
		}
	}
	return nil, identity.E(identity.CodeUserNotFound, nil)
}

func (f *FakeProvider) issue(a *Account) (*identity.Session, error) {
	if f.gen == nil {
		return nil, fmt.Errorf("fake provider has no token generator")
	}

	signed, jti, expiresAt, err := f.gen.GenerateSessionToken(jwt.SessionParams{
		UserID:         a.ID,
		Email:          a.Email,
		EmailVerified:  a.EmailVerified,
		Name:           a.Name,
		Picture:        a.Picture,
		Roles:          a.Roles,
		OrganizationID: a.OrgID,
		Provider:       "local",
	})
	if err != nil {
		return nil, err
	}

	return &identity.Session{
		Token: identity.Token{Signed: signed, JTI: jti, ExpiresAt: expiresAt},
		User:  f.user(a),
	}, nil
}

func (f *FakeProvider) user(a *Account) domain.User {
	now := time.Now()
	return domain.User{
		ID:             a.ID,
		Email:          a.Email,
		Name:           a.Name,
		Image:          a.Picture,
		EmailVerified:  a.EmailVerified,
		Roles:          a.Roles,
		OrganizationID: a.OrgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
