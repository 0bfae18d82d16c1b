package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewFixedWindowLimiter(Policy{Limit: 3, Window: time.Minute})
	l.now = func() time.Time { return clock }

	t.Run("Should allow up to the limit within a window", func(t *testing.T) {
		for want := 2; want >= 0; want-- {
			d := l.Allow("1.2.3.4")
			assert.True(t, d.Allowed)
			assert.Equal(t, want, d.Remaining)
		}
		d := l.Allow("1.2.3.4")
		assert.False(t, d.Allowed)
		assert.Equal(t, clock.Add(time.Minute), d.ResetAt)

		assert.True(t, l.Allow("5.6.7.8").Allowed)
	})

	t.Run("Should start a new window after reset time", func(t *testing.T) {
		clock = clock.Add(time.Minute + time.Second)
		d := l.Allow("1.2.3.4")
		assert.True(t, d.Allowed)
		assert.Equal(t, 2, d.Remaining)
		assert.Equal(t, 1, l.Len(), "expired keys are swept")
	})

	t.Run("Should forget a reset key", func(t *testing.T) {
		l.Reset("1.2.3.4")
		assert.Equal(t, 0, l.Len())
	})
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "unknown", ClientIP(r))
	r.Header.Set("X-Forwarded-For", " 10.1.1.1 , 172.16.0.1")
	assert.Equal(t, "10.1.1.1", ClientIP(r))
}

func TestMiddleware(t *testing.T) {
	l := NewFixedWindowLimiter(Policy{Limit: 1, Window: time.Minute})
	h := Middleware(l, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/suggest", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/suggest", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
