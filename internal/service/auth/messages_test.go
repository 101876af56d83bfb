package auth

import (
	"errors"
	"testing"

	"compliancehub-service/internal/identity"

	"github.com/stretchr/testify/assert"
)

// The message table is a closed mapping: every defined code must have a
// user-facing message, so an unmapped failure can never leak a raw error.
func TestUserMessagesCoverEveryCode(t *testing.T) {
	for _, code := range identity.AllCodes() {
		msg, ok := userMessages[code]
		assert.True(t, ok, "code %q has no user message", code)
		assert.NotEmpty(t, msg, "code %q maps to an empty message", code)
	}
}

func TestUserMessageIndistinguishableCredentialFailures(t *testing.T) {
	notFound := UserMessage(identity.E(identity.CodeUserNotFound, nil))
	badPassword := UserMessage(identity.E(identity.CodeInvalidCredential, nil))

	assert.Equal(t, notFound, badPassword,
		"unknown email and wrong password must read identically")
}

func TestUserMessageFallsBackToUnknown(t *testing.T) {
	assert.Equal(t,
		userMessages[identity.CodeUnknown],
		UserMessage(errors.New("raw provider error")),
	)
}

func TestSuppressed(t *testing.T) {
	assert.True(t, Suppressed(identity.E(identity.CodeFlowCancelled, nil)))
	assert.False(t, Suppressed(identity.E(identity.CodeInvalidCredential, nil)))
	assert.False(t, Suppressed(errors.New("untagged")))
}
