// internal/repository/postgres/account_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "compliancehub-service/internal/domain/identity"
	xerrors "compliancehub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `
	id, email, email_verified, email_verified_at, full_name, avatar_url,
	password_hash, provider, provider_user_id, roles, organization_id,
	status, last_login, created_at, updated_at
`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.EmailVerified, &a.EmailVerifiedAt, &a.FullName, &a.AvatarURL,
		&a.PasswordHash, &a.Provider, &a.ProviderUserID, &a.Roles, &a.OrganizationID,
		&a.Status, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

// FindByEmail retrieves an account by email (case-insensitive)
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`
	return scanAccount(r.db.QueryRow(ctx, query, email))
}

// FindByID retrieves an account by ID
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// FindByProviderSubject retrieves an account by federated provider subject
func (r *AccountRepository) FindByProviderSubject(ctx context.Context, provider, subject string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE provider = $1 AND provider_user_id = $2
	`
	return scanAccount(r.db.QueryRow(ctx, query, provider, subject))
}

// ExistsByEmail checks whether an account with this email exists
func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE LOWER(email) = LOWER($1))`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, email_verified, full_name, avatar_url, password_hash,
			provider, provider_user_id, roles, organization_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		a.ID, a.Email, a.EmailVerified, a.FullName, a.AvatarURL, a.PasswordHash,
		a.Provider, a.ProviderUserID, a.Roles, a.OrganizationID, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// UpdateProfile changes display name and avatar only. Nil fields are left
// untouched. Roles and organization are deliberately not reachable here.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, name, photoURL *string) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET full_name  = COALESCE($2, full_name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns + `
	`
	return scanAccount(r.db.QueryRow(ctx, query, id, name, photoURL))
}

// UpdateLastLogin stamps a successful sign-in
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE accounts SET last_login = NOW(), updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// MarkEmailVerified records a completed email verification
func (r *AccountRepository) MarkEmailVerified(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET email_verified = TRUE, email_verified_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash
func (r *AccountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return nil
}

// ListByOrganization returns all accounts in one tenant, newest first
func (r *AccountRepository) ListByOrganization(ctx context.Context, orgID string) ([]*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ========== Verification Tokens ==========

// CreateVerificationToken stores a reset or email-verify token
func (r *AccountRepository) CreateVerificationToken(ctx context.Context, t *domain.VerificationToken) error {
	query := `
		INSERT INTO verification_tokens (account_id, token_type, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, t.AccountID, t.TokenType, t.Token, t.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

// ConsumeVerificationToken marks a token used and returns its record.
// Expired or already-used tokens come back as ErrNotFound.
func (r *AccountRepository) ConsumeVerificationToken(ctx context.Context, tokenType, token string, now time.Time) (*domain.VerificationToken, error) {
	query := `
		UPDATE verification_tokens
		SET used_at = NOW()
		WHERE token_type = $1 AND token = $2 AND used_at IS NULL AND expires_at > $3
		RETURNING id, account_id, token_type, token, expires_at, used_at, created_at
	`
	var t domain.VerificationToken
	err := r.db.QueryRow(ctx, query, tokenType, token, now).Scan(
		&t.ID, &t.AccountID, &t.TokenType, &t.Token, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}
	return &t, nil
}
