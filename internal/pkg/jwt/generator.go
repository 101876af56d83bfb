// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string // key id for rotation
	Ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		Ttl:      ttl,
	}
}

// SessionParams carries everything a session token asserts about its holder.
type SessionParams struct {
	UserID         string
	Email          string
	EmailVerified  bool
	Name           string
	Picture        string
	Roles          []string
	OrganizationID string
	Provider       string
}

// GenerateSessionToken signs a session token for the given principal.
// Returns the signed token, its jti, and its expiry.
func (g *Generator) GenerateSessionToken(p SessionParams) (string, string, time.Time, error) {
	if g.priv == nil {
		return "", "", time.Time{}, fmt.Errorf("jwt generator has nil private key")
	}
	if p.UserID == "" {
		return "", "", time.Time{}, fmt.Errorf("session token requires a user id")
	}

	now := time.Now()
	jti := ulid.Make().String()
	expiresAt := now.Add(g.Ttl)

	claims := &Claims{
		Roles:          p.Roles,
		OrganizationID: p.OrganizationID,
		Email:          p.Email,
		EmailVerified:  p.EmailVerified,
		Name:           p.Name,
		Picture:        p.Picture,
		Provider:       p.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   p.UserID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}
