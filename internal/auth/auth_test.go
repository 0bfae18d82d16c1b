package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWith(cookie *http.Cookie, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/ideas", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestGate(t *testing.T) {
	t.Run("Should allow everything when unconfigured", func(t *testing.T) {
		g := NewGate(Config{})
		assert.Equal(t, Result{Authenticated: true, Method: MethodNone}, g.Check(requestWith(nil, nil)))
		assert.True(t, g.SessionActive(requestWith(nil, nil)))
	})

	t.Run("Should issue a cookie for the right password only", func(t *testing.T) {
		g := NewGate(Config{SitePassword: "ember", SecureCookie: true})
		_, err := g.Login("wrong")
		assert.ErrorIs(t, err, ErrInvalidPassword)

		c, err := g.Login("ember")
		require.NoError(t, err)
		assert.Equal(t, CookieName, c.Name)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 30*24*60*60, c.MaxAge)

		assert.Equal(t, MethodCookie, g.Check(requestWith(c, nil)).Method)
		assert.True(t, g.SessionActive(requestWith(c, nil)))
		assert.False(t, g.Check(requestWith(nil, nil)).Authenticated)
	})

	t.Run("Should reject forged and expired cookies", func(t *testing.T) {
		g := NewGate(Config{SitePassword: "ember"})
		forged := &http.Cookie{Name: CookieName, Value: "authenticated"}
		assert.False(t, g.Check(requestWith(forged, nil)).Authenticated)

		other, err := NewGate(Config{SitePassword: "other"}).Login("other")
		require.NoError(t, err)
		assert.False(t, g.Check(requestWith(other, nil)).Authenticated)

		c, err := g.Login("ember")
		require.NoError(t, err)
		g.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
		assert.False(t, g.Check(requestWith(c, nil)).Authenticated)
	})

	t.Run("Should accept the API key by bearer or header", func(t *testing.T) {
		g := NewGate(Config{SitePassword: "ember", APIKey: "k-123"})
		assert.Equal(t, MethodAPIKey, g.Check(requestWith(nil, map[string]string{"Authorization": "Bearer k-123"})).Method)
		assert.Equal(t, MethodAPIKey, g.Check(requestWith(nil, map[string]string{"X-API-Key": "k-123"})).Method)
		assert.False(t, g.Check(requestWith(nil, map[string]string{"Authorization": "Bearer k-12"})).Authenticated)
		assert.False(t, g.Check(requestWith(nil, map[string]string{"X-API-Key": "k-1234"})).Authenticated)
	})

	t.Run("Should clear the cookie on logout", func(t *testing.T) {
		c := NewGate(Config{SitePassword: "ember"}).LogoutCookie()
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	})
}

func TestRequire(t *testing.T) {
	g := NewGate(Config{APIKey: "k"})
	var method Method
	h := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = MethodFrom(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, requestWith(nil, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, requestWith(nil, map[string]string{"X-API-Key": "k"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MethodAPIKey, method)
}

func TestSecretEqual(t *testing.T) {
	assert.True(t, SecretEqual("abc", "abc"))
	assert.False(t, SecretEqual("abc", "abd"))
	assert.False(t, SecretEqual("abc", "abcd"))
	assert.False(t, SecretEqual("", "abc"))
}
