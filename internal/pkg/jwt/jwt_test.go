package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeypair(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestGenerateAndVerifyRoundTrip(t *testing.T) {
	key := newTestKeypair(t)
	gen := NewGenerator(key, "compliancehub", "compliancehub-dashboard", "test-key", time.Hour)
	ver := NewVerifier(&key.PublicKey, "compliancehub", "compliancehub-dashboard")

	signed, jti, expiresAt, err := gen.GenerateSessionToken(SessionParams{
		UserID:         "user-1",
		Email:          "qm@example.com",
		EmailVerified:  true,
		Name:           "Quality Manager",
		Roles:          []string{"user", "quality_manager"},
		OrganizationID: "org-1",
		Provider:       "local",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ver.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "qm@example.com", claims.Email)
	assert.Equal(t, []string{"user", "quality_manager"}, claims.Roles)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.True(t, claims.EmailVerified)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	key := newTestKeypair(t)
	gen := NewGenerator(key, "compliancehub", "compliancehub-dashboard", "", -time.Minute)
	ver := NewVerifier(&key.PublicKey, "compliancehub", "compliancehub-dashboard")

	signed, _, _, err := gen.GenerateSessionToken(SessionParams{UserID: "user-1"})
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	key := newTestKeypair(t)
	other := newTestKeypair(t)
	gen := NewGenerator(key, "compliancehub", "compliancehub-dashboard", "", time.Hour)
	ver := NewVerifier(&other.PublicKey, "compliancehub", "compliancehub-dashboard")

	signed, _, _, err := gen.GenerateSessionToken(SessionParams{UserID: "user-1"})
	require.NoError(t, err)

	_, err = ver.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	key := newTestKeypair(t)
	gen := NewGenerator(key, "compliancehub", "compliancehub-dashboard", "", time.Hour)

	signed, _, _, err := gen.GenerateSessionToken(SessionParams{UserID: "user-1"})
	require.NoError(t, err)

	_, err = NewVerifier(&key.PublicKey, "someone-else", "compliancehub-dashboard").Verify(signed)
	assert.Error(t, err)

	_, err = NewVerifier(&key.PublicKey, "compliancehub", "other-audience").Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	key := newTestKeypair(t)
	gen := NewGenerator(key, "compliancehub", "compliancehub-dashboard", "", time.Hour)

	_, _, _, err := gen.GenerateSessionToken(SessionParams{})
	assert.Error(t, err)
}

func TestClaimsRoleHelpers(t *testing.T) {
	claims := &Claims{Roles: []string{"user", "test_reviewer"}}

	assert.True(t, claims.HasRole("test_reviewer"))
	assert.False(t, claims.HasRole("admin"))
	assert.True(t, claims.HasAnyRole("admin", "test_reviewer"))
	assert.False(t, claims.HasAnyRole("admin", "system_admin"))
	assert.False(t, (&Claims{}).HasAnyRole("user"))
}
