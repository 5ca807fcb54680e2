package session

import (
	"context"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Identity is the read-only view of who is signed in.
type Identity interface {
	CurrentTenant() (string, bool)
	IsAuthenticated() bool
	UserName() string
	Token() string
}

type identity struct {
	token  string
	claims jwt.MapClaims
}

// Anonymous is the identity of a browser without a usable token.
func Anonymous() Identity {
	return identity{}
}

// FromToken decodes the token payload without checking the signature; the
// backend verifies every request. Unparseable or expired tokens read as anonymous.
func FromToken(token string, now time.Time) Identity {
	token = strings.TrimSpace(token)
	if token == "" {
		return Anonymous()
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Anonymous()
	}
	if exp, ok := numeric(claims, "exp"); ok && !now.Before(time.Unix(exp, 0)) {
		return Anonymous()
	}
	return identity{token: token, claims: claims}
}

func (i identity) IsAuthenticated() bool {
	return i.token != ""
}

func (i identity) CurrentTenant() (string, bool) {
	if !i.IsAuthenticated() {
		return "", false
	}
	company := parseString(i.claims, "company")
	return company, company != ""
}

func (i identity) UserName() string {
	for _, key := range []string{"username", "name", "email"} {
		if v := parseString(i.claims, key); v != "" {
			return v
		}
	}
	return ""
}

func (i identity) Token() string {
	return i.token
}

func parseString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func numeric(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

type contextKey int

const tokenKey contextKey = iota + 1

// WithToken attaches the raw session token to ctx for outgoing backend calls.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
