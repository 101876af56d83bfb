// internal/domain/identity/dto.go
package identity

import "time"

// SignInRequest for credential sign-in
type SignInRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// SignUpRequest for account creation
type SignUpRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Name      string `json:"name" binding:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

// SessionResponse returned once the provider reports a signed-in principal
type SessionResponse struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetPasswordRequest triggers a password-reset email
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// UpdateProfileRequest updates provider-held profile fields only.
// Nil fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	PhotoURL *string `json:"photo_url"`
}
