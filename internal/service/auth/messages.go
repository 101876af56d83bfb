// internal/service/auth/messages.go
package auth

import "compliancehub-service/internal/identity"

// userMessages is the closed mapping from provider failure codes to the
// stable, human-readable messages the UI shows. Raw provider errors are
// never surfaced. A test asserts the table covers every defined code.
var userMessages = map[identity.Code]string{
	identity.CodeInvalidCredential: "Invalid email or password.",
	identity.CodeUserNotFound:      "Invalid email or password.",
	identity.CodeUserDisabled:      "This account has been disabled. Contact your administrator.",
	identity.CodeEmailInUse:        "An account with this email already exists.",
	identity.CodeWeakPassword:      "Password must be at least 8 characters.",
	identity.CodeInvalidEmail:      "Invalid email format.",
	identity.CodeTooManyRequests:   "Too many attempts. Please try again later.",
	identity.CodeNetworkFailure:    "A network error occurred. Please try again.",
	identity.CodeFlowCancelled:     "Sign-in was cancelled.",
	identity.CodeUnconfigured:      "Sign-in with Google is not available right now.",
	identity.CodeUnknown:           "Something went wrong. Please try again.",
}

// suppressedCodes never reach the notification path. A user dismissing
// the federated consent screen is a deliberate act, not a failure.
var suppressedCodes = map[identity.Code]bool{
	identity.CodeFlowCancelled: true,
}

// UserMessage returns the mapped message for a provider failure.
func UserMessage(err error) string {
	if msg, ok := userMessages[identity.CodeOf(err)]; ok {
		return msg
	}
	return userMessages[identity.CodeUnknown]
}

// Suppressed reports whether a failure must stay invisible to the user.
func Suppressed(err error) bool {
	return suppressedCodes[identity.CodeOf(err)]
}
