package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)
	return s
}

func TestTokenInfo(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := sign(t, jwt.MapClaims{"sub": "42", "iss": "platform", "exp": exp.Unix(), "iat": exp.Add(-2 * time.Hour).Unix()})

	tok, err := TokenInfo(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", tok.Subject)
	assert.Equal(t, "platform", tok.Issuer)
	assert.True(t, tok.ExpiresAt.Equal(exp))
	assert.False(t, tok.Expired(time.Now()))
	assert.True(t, tok.Expired(exp.Add(time.Second)))
}

func TestTokenInfoNumericSubjectAndBearerPrefix(t *testing.T) {
	raw := sign(t, jwt.MapClaims{"sub": 7})

	tok, err := TokenInfo("Bearer " + raw)
	require.NoError(t, err)
	assert.Equal(t, "7", tok.Subject)
	assert.True(t, tok.ExpiresAt.IsZero())
	assert.False(t, tok.Expired(time.Now()))
}

func TestTokenInfoErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"bearer only", "Bearer   "},
		{"opaque", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TokenInfo(tt.raw)
			assert.Error(t, err)
		})
	}
}
