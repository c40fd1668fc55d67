package auth

import (
	"testing"
	"time"

	"parilka/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4) // min cost keeps the test fast

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, h.Compare("secret123", hash))
	assert.False(t, h.Compare("wrong", hash))
	assert.False(t, h.Compare("secret123", "not-a-hash"))
}

func TestBcryptHasherCostClamped(t *testing.T) {
	// Out-of-range costs fall back to the bcrypt default instead of failing.
	h := NewBcryptHasher(99)
	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, h.Compare("secret123", hash))
}

func TestJWTIssuer(t *testing.T) {
	issuer := NewJWTIssuer(config.AuthConfig{
		JWTSecret:   "test-secret",
		JWTIssuer:   "parilka",
		JWTAudience: "parilka-clients",
	})

	token, err := issuer.Issue("acc-1", map[string]any{
		"email": "client@example.com",
		"role":  "client",
	}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.ParseValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims["sub"])
	assert.Equal(t, "client@example.com", claims["email"])
	assert.Equal(t, "client", claims["role"])
	assert.Equal(t, "parilka", claims["iss"])
	assert.Equal(t, "parilka-clients", claims["aud"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), int64(exp), 5)
}

func TestJWTIssuerRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTIssuer(config.AuthConfig{JWTSecret: "secret-a"})
	other := NewJWTIssuer(config.AuthConfig{JWTSecret: "secret-b"})

	token, err := issuer.Issue("acc-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = other.ParseValidate(token)
	assert.Error(t, err)
}

func TestJWTIssuerRejectsExpired(t *testing.T) {
	issuer := NewJWTIssuer(config.AuthConfig{JWTSecret: "test-secret"})

	token, err := issuer.Issue("acc-1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = issuer.ParseValidate(token)
	assert.Error(t, err)
}

func TestJWTIssuerRejectsTampered(t *testing.T) {
	issuer := NewJWTIssuer(config.AuthConfig{JWTSecret: "test-secret"})

	token, err := issuer.Issue("acc-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = issuer.ParseValidate(token + "x")
	assert.Error(t, err)
}
