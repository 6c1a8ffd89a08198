package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("secret", "franchisehub-test")

	token, err := tm.GenerateToken("u-1", "dana@example.com", true, time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "franchisehub-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateTokenRequiresUserID(t *testing.T) {
	tm := NewTokenManager("secret", "franchisehub-test")

	_, err := tm.GenerateToken("", "dana@example.com", false, time.Hour)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", "franchisehub-test")
	other := NewTokenManager("different", "franchisehub-test")

	token, err := tm.GenerateToken("u-1", "dana@example.com", false, time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "franchisehub-test")

	token, err := tm.GenerateToken("u-1", "dana@example.com", false, -time.Minute)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractToken("")
	assert.Error(t, err)

	_, err = ExtractToken("Basic dXNlcjpwYXNz")
	assert.Error(t, err)

	_, err = ExtractToken("Bearer")
	assert.Error(t, err)
}
