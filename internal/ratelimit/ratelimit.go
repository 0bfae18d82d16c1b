// Package ratelimit provides in-memory fixed-window request counters keyed by client address.
// Counters live in process memory and reset when the process restarts.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"kindling/pkg/api"
)

// Policy is a request budget per window.
type Policy struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// Default policies per endpoint class.
var (
	AuthPolicy = Policy{Limit: 5, Window: 15 * time.Minute}
	AIPolicy   = Policy{Limit: 20, Window: time.Minute}
	APIPolicy  = Policy{Limit: 100, Window: time.Minute}
	ReadPolicy = Policy{Limit: 200, Window: time.Minute}
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type entry struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key within fixed windows.
type FixedWindowLimiter struct {
	mu        sync.Mutex
	policy    Policy
	entries   map[string]*entry
	nextSweep time.Time
	now       func() time.Time
}

// NewFixedWindowLimiter creates a limiter for policy.
func NewFixedWindowLimiter(policy Policy) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		policy:  policy,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow counts one request for key.
func (l *FixedWindowLimiter) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.policy.Window)}
		l.entries[key] = e
		return Decision{Allowed: true, Remaining: l.policy.Limit - 1, ResetAt: e.resetAt}
	}
	if e.count >= l.policy.Limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}
	}
	e.count++
	return Decision{Allowed: true, Remaining: l.policy.Limit - e.count, ResetAt: e.resetAt}
}

// Reset forgets key.
func (l *FixedWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Len reports how many keys are tracked.
func (l *FixedWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops expired windows at most once per window length. Callers hold l.mu.
func (l *FixedWindowLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
	l.nextSweep = now.Add(l.policy.Window)
}

// ClientIP returns the first X-Forwarded-For entry, or "unknown".
func ClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return "unknown"
	}
	first, _, _ := strings.Cut(forwarded, ",")
	if ip := strings.TrimSpace(first); ip != "" {
		return ip
	}
	return "unknown"
}

// Middleware rejects requests over the limiter's budget with 429.
func Middleware(l *FixedWindowLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			d := l.Allow(ip)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.policy.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				retry := int(d.ResetAt.Sub(l.now()).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				logger.Warn("Rate limit exceeded",
					zap.String("client", ip),
					zap.String("path", r.URL.Path),
				)
				api.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
