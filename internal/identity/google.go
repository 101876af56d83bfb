// internal/identity/google.go
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// Federated flow error parameter sent when the user dismissed the
// consent screen. Treated as a silent no-op, never surfaced.
const cancelledErrorParam = "access_denied"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleAuthenticator runs the federated sign-in flow against Google
// with email and profile scopes. Missing configuration is a warning at
// construction time and a call-time failure, never a crash.
type GoogleAuthenticator struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	logger   *zap.Logger
}

func NewGoogleAuthenticator(ctx context.Context, cfg GoogleConfig, logger *zap.Logger) *GoogleAuthenticator {
	g := &GoogleAuthenticator{logger: logger}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		logger.Warn("google sign-in not configured, federated sign-in disabled")
		return g
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		logger.Warn("google OIDC discovery failed, federated sign-in disabled", zap.Error(err))
		return g
	}

	g.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}
	g.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return g
}

// Enabled reports whether federated sign-in is configured.
func (g *GoogleAuthenticator) Enabled() bool {
	return g.oauth != nil
}

// AuthURL builds the consent-screen redirect for a new flow.
func (g *GoogleAuthenticator) AuthURL(state, nonce string) (string, error) {
	if !g.Enabled() {
		return "", E(CodeUnconfigured, fmt.Errorf("google sign-in not configured"))
	}
	return g.oauth.AuthCodeURL(state, oidc.Nonce(nonce)), nil
}

// IsCancellation reports whether a callback error parameter means the
// user dismissed the flow.
func IsCancellation(errorParam string) bool {
	return errorParam == cancelledErrorParam
}

// Exchange swaps the authorization code for tokens, verifies the ID
// token signature and nonce, and returns the asserted identity.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, code, expectedNonce string) (*FederatedIdentity, error) {
	if !g.Enabled() {
		return nil, E(CodeUnconfigured, fmt.Errorf("google sign-in not configured"))
	}

	oauth2Token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, E(CodeNetworkFailure, fmt.Errorf("token exchange failed: %w", err))
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, E(CodeInvalidCredential, fmt.Errorf("no ID token in response"))
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, E(CodeInvalidCredential, fmt.Errorf("ID token verification failed: %w", err))
	}

	var claims struct {
		Nonce         string `json:"nonce"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, E(CodeInvalidCredential, fmt.Errorf("failed to extract claims: %w", err))
	}

	// Nonce must match the one bound to this flow, replayed tokens fail here
	if claims.Nonce != expectedNonce {
		return nil, E(CodeInvalidCredential, fmt.Errorf("nonce mismatch"))
	}

	return &FederatedIdentity{
		Provider:      "google",
		Subject:       claims.Sub,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}
