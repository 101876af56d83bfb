// internal/pkg/session/cookie.go
package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie carrying the signed token. Its value
// format is owned entirely by the token issuer; nothing here inspects it.
const CookieName = "auth-token"

// CookieWriter is the only component allowed to set or clear the session
// cookie. The resolver only ever reads it, so the client and server can
// never hold divergent views of session validity.
type CookieWriter struct {
	secure bool
}

// NewCookieWriter builds a writer. secure should only be false for local
// development over plain HTTP.
func NewCookieWriter(secure bool) *CookieWriter {
	return &CookieWriter{secure: secure}
}

// Secure reports whether cookies are marked Secure. Handlers that set
// auxiliary cookies (OAuth state) should match the session cookie.
func (w *CookieWriter) Secure() bool {
	return w.secure
}

// Set writes the session cookie for a freshly issued token.
func (w *CookieWriter) Set(rw http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(rw, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		Secure:   w.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear expires the session cookie immediately. Safe to call when no
// cookie is present.
func (w *CookieWriter) Clear(rw http.ResponseWriter) {
	http.SetCookie(rw, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   w.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ReadToken returns the raw session token from the request cookie, or ""
// when the cookie is absent.
func ReadToken(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
