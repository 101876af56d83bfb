// internal/domain/identity/entity.go
package identity

import (
	"database/sql"
	"time"
)

// User is the session identity exposed to the rest of the application.
// Roles and OrganizationID are always derived from verified token claims,
// never from client-supplied input.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Image          string    `json:"image,omitempty"`
	EmailVerified  bool      `json:"email_verified"`
	Roles          []string  `json:"roles"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Account is the provider-side record backing a User.
type Account struct {
	ID              string         `json:"id" db:"id"`
	Email           string         `json:"email" db:"email"`
	EmailVerified   bool           `json:"email_verified" db:"email_verified"`
	EmailVerifiedAt sql.NullTime   `json:"email_verified_at" db:"email_verified_at"`
	FullName        sql.NullString `json:"full_name" db:"full_name"`
	AvatarURL       sql.NullString `json:"avatar_url" db:"avatar_url"`
	PasswordHash    sql.NullString `json:"-" db:"password_hash"`
	Provider        string         `json:"provider" db:"provider"` // local, google
	ProviderUserID  sql.NullString `json:"-" db:"provider_user_id"`
	Roles           []string       `json:"roles" db:"roles"`
	OrganizationID  sql.NullString `json:"organization_id" db:"organization_id"`
	Status          string         `json:"status" db:"status"` // active, disabled, pending_verification
	LastLogin       sql.NullTime   `json:"last_login" db:"last_login"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// VerificationToken represents an email-verification or password-reset token.
type VerificationToken struct {
	ID        int64        `json:"id" db:"id"`
	AccountID string       `json:"account_id" db:"account_id"`
	TokenType string       `json:"token_type" db:"token_type"` // password_reset, email_verify
	Token     string       `json:"token" db:"token"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
	UsedAt    sql.NullTime `json:"used_at" db:"used_at"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// SessionEvent is broadcast to the admin dashboard when a session is
// created or ended. Best-effort, never awaited by auth operations.
type SessionEvent struct {
	Type           string    `json:"type"` // signed_in, signed_out
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Provider       string    `json:"provider,omitempty"`
	JTI            string    `json:"jti"`
	At             time.Time `json:"at"`
}

const (
	SessionEventSignedIn  = "signed_in"
	SessionEventSignedOut = "signed_out"
)

// ActiveSession is the observational record kept per signed-in session.
// It powers the admin dashboard's active-sessions view and never
// participates in token validity decisions.
type ActiveSession struct {
	JTI            string    `json:"jti"`
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organization_id,omitempty"`
	IPAddress      string    `json:"ip_address"`
	UserAgent      string    `json:"user_agent"`
	Provider       string    `json:"provider"`
	LoginAt        time.Time `json:"login_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
