package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	"compliancehub-service/internal/identity"
	"compliancehub-service/internal/identity/providerfake"
	xerrors "compliancehub-service/internal/pkg/errors"
	"compliancehub-service/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingNotifier struct {
	messages []string
}

func (n *countingNotifier) Notify(message string) {
	n.messages = append(n.messages, message)
}

type recordingPublisher struct {
	events []domain.SessionEvent
}

func (p *recordingPublisher) Publish(ev domain.SessionEvent) {
	p.events = append(p.events, ev)
}

// denyingThrottle refuses every attempt.
type denyingThrottle struct{}

func (denyingThrottle) CheckSignInAttempt(context.Context, string, string) (bool, int64, error) {
	return false, 0, nil
}

func (denyingThrottle) ResetSignInAttempts(context.Context, string, string) error {
	return nil
}

func (denyingThrottle) CheckPasswordResetAttempt(context.Context, string) (bool, error) {
	return false, nil
}

type fixture struct {
	service  *AuthService
	provider *providerfake.FakeProvider
	notifier *countingNotifier
	events   *recordingPublisher
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	gen := jwt.NewGenerator(key, "compliancehub", "compliancehub-dashboard", "", time.Hour)

	provider := providerfake.NewFakeProvider(gen)
	notifier := &countingNotifier{}
	events := &recordingPublisher{}

	svc := NewAuthService(provider, nil, nil, nil, events, notifier, cfg, zap.NewNop())
	return &fixture{service: svc, provider: provider, notifier: notifier, events: events}
}

func TestSignInSuccess(t *testing.T) {
	f := newFixture(t, Config{MaskResetEnumeration: true})
	f.provider.Seed(providerfake.Account{
		Email:    "officer@example.com",
		Password: "correct horse",
		Roles:    []string{"user", "compliance_officer"},
		OrgID:    "org-1",
	})

	sess, err := f.service.SignIn(context.Background(), &domain.SignInRequest{
		Email:    "officer@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.Token.Signed)
	assert.Equal(t, "officer@example.com", sess.User.Email)

	assert.Empty(t, f.notifier.messages, "a successful sign-in must not notify")
	require.Len(t, f.events.events, 1)
	assert.Equal(t, domain.SessionEventSignedIn, f.events.events[0].Type)
	assert.Equal(t, sess.Token.JTI, f.events.events[0].JTI)
	assert.Equal(t, "org-1", f.events.events[0].OrganizationID)
}

func TestSignInFailureNotifiesExactlyOnce(t *testing.T) {
	f := newFixture(t, Config{})
	f.provider.Seed(providerfake.Account{Email: "officer@example.com", Password: "right"})

	_, err := f.service.SignIn(context.Background(), &domain.SignInRequest{
		Email:    "officer@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, identity.IsCode(err, identity.CodeInvalidCredential))

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "Invalid email or password.", f.notifier.messages[0])
	assert.Empty(t, f.events.events, "failed sign-in must not publish session events")
}

func TestSignInUnknownEmailReadsLikeWrongPassword(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.service.SignIn(context.Background(), &domain.SignInRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "Invalid email or password.", f.notifier.messages[0])
}

func TestSignInThrottled(t *testing.T) {
	f := newFixture(t, Config{})
	f.provider.Seed(providerfake.Account{Email: "officer@example.com", Password: "pw"})
	svc := NewAuthService(f.provider, nil, nil, denyingThrottle{}, f.events, f.notifier, Config{}, zap.NewNop())

	_, err := svc.SignIn(context.Background(), &domain.SignInRequest{
		Email:    "officer@example.com",
		Password: "pw",
	})
	require.Error(t, err)
	assert.True(t, identity.IsCode(err, identity.CodeTooManyRequests))
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "Too many attempts. Please try again later.", f.notifier.messages[0])
	assert.Empty(t, f.events.events, "a throttled attempt must not publish session events")
}

func TestResetPasswordThrottled(t *testing.T) {
	f := newFixture(t, Config{MaskResetEnumeration: true})
	f.provider.Seed(providerfake.Account{Email: "officer@example.com", Password: "pw"})
	svc := NewAuthService(f.provider, nil, nil, denyingThrottle{}, f.events, f.notifier, Config{MaskResetEnumeration: true}, zap.NewNop())

	err := svc.ResetPassword(context.Background(), "officer@example.com")
	require.Error(t, err)
	assert.True(t, identity.IsCode(err, identity.CodeTooManyRequests))
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
	assert.Empty(t, f.provider.ResetEmails, "no reset mail leaves while throttled")
}

func TestCompleteGoogleSignInCancellation(t *testing.T) {
	f := newFixture(t, Config{})

	sess, err := f.service.CompleteGoogleSignIn(context.Background(), "access_denied", "", "", "", "")
	assert.NoError(t, err)
	assert.Nil(t, sess)

	assert.Empty(t, f.notifier.messages, "cancellation is a deliberate act, never an error")
	assert.Empty(t, f.events.events)
}

func TestCompleteGoogleSignInProviderErrorNotifiesOnce(t *testing.T) {
	f := newFixture(t, Config{})

	sess, err := f.service.CompleteGoogleSignIn(context.Background(), "server_error", "", "", "", "")
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.Len(t, f.notifier.messages, 1)
}

func TestSignOutIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{})

	// Anonymous caller: nothing to do, nothing to fail
	require.NoError(t, f.service.SignOut(context.Background(), nil, ""))
	assert.Empty(t, f.events.events)

	user := &domain.User{ID: "u1", Email: "officer@example.com"}
	require.NoError(t, f.service.SignOut(context.Background(), user, "jti-1"))
	require.NoError(t, f.service.SignOut(context.Background(), user, "jti-1"))

	require.Len(t, f.events.events, 2)
	assert.Equal(t, domain.SessionEventSignedOut, f.events.events[0].Type)
	assert.Equal(t, "jti-1", f.events.events[0].JTI)
}

func TestResetPasswordMasksUnknownAddress(t *testing.T) {
	f := newFixture(t, Config{MaskResetEnumeration: true})

	err := f.service.ResetPassword(context.Background(), "stranger@example.com")
	assert.NoError(t, err, "unknown address must be indistinguishable from success")
	assert.Empty(t, f.notifier.messages)
}

func TestResetPasswordUnmaskedSurfacesUnknownAddress(t *testing.T) {
	f := newFixture(t, Config{MaskResetEnumeration: false})

	err := f.service.ResetPassword(context.Background(), "stranger@example.com")
	require.Error(t, err)
	assert.True(t, identity.IsCode(err, identity.CodeUserNotFound))
	assert.Len(t, f.notifier.messages, 1)
}

func TestResetPasswordInvalidSyntaxAlwaysErrors(t *testing.T) {
	// Masking hides existence, not malformed input
	f := newFixture(t, Config{MaskResetEnumeration: true})

	err := f.service.ResetPassword(context.Background(), "not-an-email")
	require.Error(t, err)
	assert.True(t, identity.IsCode(err, identity.CodeInvalidEmail))
	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "Invalid email format.", f.notifier.messages[0])
}

func TestResetPasswordKnownAddressSendsEmail(t *testing.T) {
	f := newFixture(t, Config{MaskResetEnumeration: true})
	f.provider.Seed(providerfake.Account{Email: "officer@example.com", Password: "pw"})

	require.NoError(t, f.service.ResetPassword(context.Background(), "officer@example.com"))
	assert.Equal(t, []string{"officer@example.com"}, f.provider.ResetEmails)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newFixture(t, Config{})
	f.provider.Seed(providerfake.Account{Email: "taken@example.com", Password: "pw"})

	_, err := f.service.SignUp(context.Background(), &domain.SignUpRequest{
		Email:    "taken@example.com",
		Password: "longenough",
		Name:     "Dup",
	})
	require.Error(t, err)
	assert.True(t, identity.IsCode(err, identity.CodeEmailInUse))
	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "An account with this email already exists.", f.notifier.messages[0])
}

func TestUpdateProfileRequiresPrincipal(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.service.UpdateProfile(context.Background(), nil, &domain.UpdateProfileRequest{})
	assert.ErrorIs(t, err, xerrors.ErrNoPrincipal)

	err = f.service.ResendVerificationEmail(context.Background(), nil)
	assert.ErrorIs(t, err, xerrors.ErrNoPrincipal)
}

func TestUpdateProfileChangesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t, Config{})
	seeded := f.provider.Seed(providerfake.Account{
		Email:    "officer@example.com",
		Password: "pw",
		Name:     "Before",
		Picture:  "https://img.example.com/a.png",
	})

	name := "After"
	user := &domain.User{ID: seeded.ID}
	updated, err := f.service.UpdateProfile(context.Background(), user, &domain.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "https://img.example.com/a.png", updated.Image, "unset fields stay untouched")
}
