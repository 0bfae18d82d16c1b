// Package auth implements the shared-secret gate: a signed session cookie for browsers
// and an API key for integration callers.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie set by a successful login.
const CookieName = "kindling_auth"

// DefaultSessionTTL is how long a login lasts.
const DefaultSessionTTL = 30 * 24 * time.Hour

const issuer = "kindling"

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid session token")
)

// Method records how a request was authenticated.
type Method string

const (
	MethodNone   Method = "none"
	MethodCookie Method = "cookie"
	MethodAPIKey Method = "api_key"
)

// Result is the outcome of checking a request.
type Result struct {
	Authenticated bool
	Method        Method
}

// Config holds the gate's secrets.
type Config struct {
	SitePassword string
	APIKey       string

	// SessionSecret signs session cookies. When empty a key is derived from the other secrets,
	// so changing the password ends every session.
	SessionSecret string
	SecureCookie  bool
	SessionTTL    time.Duration
}

// Gate checks requests against the configured secrets.
type Gate struct {
	cfg    Config
	secret []byte
	now    func() time.Time
}

// NewGate creates a gate. With neither a password nor an API key configured every request passes.
func NewGate(cfg Config) *Gate {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		sum := sha256.Sum256([]byte("kindling-session\x00" + cfg.SitePassword + "\x00" + cfg.APIKey))
		secret = sum[:]
	}
	return &Gate{cfg: cfg, secret: secret, now: time.Now}
}

// Open reports whether no secret is configured.
func (g *Gate) Open() bool {
	return g.cfg.SitePassword == "" && g.cfg.APIKey == ""
}

// Check authenticates r by session cookie, then bearer token, then X-API-Key header.
func (g *Gate) Check(r *http.Request) Result {
	if g.Open() {
		return Result{Authenticated: true, Method: MethodNone}
	}
	if g.validCookie(r) {
		return Result{Authenticated: true, Method: MethodCookie}
	}
	if g.cfg.APIKey != "" {
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && SecretEqual(bearer, g.cfg.APIKey) {
			return Result{Authenticated: true, Method: MethodAPIKey}
		}
		if key := r.Header.Get("X-API-Key"); key != "" && SecretEqual(key, g.cfg.APIKey) {
			return Result{Authenticated: true, Method: MethodAPIKey}
		}
	}
	return Result{Method: MethodNone}
}

// SessionActive reports whether the browser session is valid. Without a password it always is.
func (g *Gate) SessionActive(r *http.Request) bool {
	return g.cfg.SitePassword == "" || g.validCookie(r)
}

// Login checks password and returns the session cookie to set.
func (g *Gate) Login(password string) (*http.Cookie, error) {
	if g.cfg.SitePassword != "" && !SecretEqual(password, g.cfg.SitePassword) {
		return nil, ErrInvalidPassword
	}
	token, err := g.issue()
	if err != nil {
		return nil, err
	}
	return g.cookie(token, int(g.cfg.SessionTTL.Seconds())), nil
}

// LogoutCookie returns a cookie that clears the session.
func (g *Gate) LogoutCookie() *http.Cookie {
	return g.cookie("", -1)
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (g *Gate) issue() (string, error) {
	now := g.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "owner",
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.cfg.SessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Validate parses a session token.
func (g *Gate) Validate(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

func (g *Gate) validCookie(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return g.Validate(c.Value) == nil
}

// SecretEqual compares two secrets in time independent of where they differ.
// Hashing first keeps the comparison length independent too.
func SecretEqual(provided, expected string) bool {
	a := sha256.Sum256([]byte(provided))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

type contextKey struct{ name string }

var methodKey = contextKey{"authMethod"}

// WithMethod stores the authentication method on ctx.
func WithMethod(ctx context.Context, m Method) context.Context {
	return context.WithValue(ctx, methodKey, m)
}

// MethodFrom returns the authentication method stored on ctx.
func MethodFrom(ctx context.Context) Method {
	if m, ok := ctx.Value(methodKey).(Method); ok {
		return m
	}
	return MethodNone
}
