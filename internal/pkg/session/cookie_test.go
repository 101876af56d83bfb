package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSetWritesHardenedCookie(t *testing.T) {
	w := httptest.NewRecorder()
	expires := time.Now().Add(24 * time.Hour)

	NewCookieWriter(true).Set(w, "signed-token", expires)

	c := cookieFrom(t, w)
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "signed-token", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.WithinDuration(t, expires, c.Expires, time.Second)
}

func TestClearExpiresCookieImmediately(t *testing.T) {
	w := httptest.NewRecorder()
	NewCookieWriter(true).Clear(w)

	c := cookieFrom(t, w)
	assert.Equal(t, CookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestReadToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ReadToken(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	assert.Equal(t, "tok", ReadToken(r))
}
