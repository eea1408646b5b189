package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrNoToken = errors.New("no token configured")

// Token is what the client can read from a bearer token without the
// server's key.
type Token struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry before now.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// TokenInfo decodes the claims of raw without verifying its signature. The
// server stays the authority on whether the token is valid.
func TokenInfo(raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithJSONNumber())
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	t := &Token{
		Subject: claimString(claims["sub"]),
		Issuer:  claimString(claims["iss"]),
	}
	t.IssuedAt = claimTime(claims["iat"])
	t.ExpiresAt = claimTime(claims["exp"])
	return t, nil
}

func claimString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func claimTime(v any) time.Time {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return time.Unix(i, 0)
		}
		if f, err := n.Float64(); err == nil {
			return time.Unix(int64(f), 0)
		}
	case float64:
		return time.Unix(int64(n), 0)
	}
	return time.Time{}
}
