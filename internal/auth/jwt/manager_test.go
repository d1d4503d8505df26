package jwt

import (
	"testing"
	"time"

	"github.com/cheftrack/cheftrack-backend/pkg/config"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(access time.Duration) *Manager {
	return NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  access,
		RefreshExpiry: time.Hour,
		Issuer:        "cheftrack-test",
	})
}

func code(t *testing.T, err error) string {
	t.Helper()
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Code
}

func TestGenerateAndValidate(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GenerateTokenPair(&UserInfo{ID: "user-1", Email: "chef@example.com", FirstName: "Ada"}, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "Ada", claims.FirstName)
	assert.Equal(t, "cheftrack-test", claims.Issuer)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "session-1", refresh.SessionID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := testManager(time.Minute)
	pair, err := m.GenerateTokenPair(&UserInfo{ID: "user-1"}, "session-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.Equal(t, "TOKEN_INVALID", code(t, err))

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.Equal(t, "TOKEN_INVALID", code(t, err))
}

func TestExpiredAccessToken(t *testing.T) {
	m := testManager(-time.Minute)
	pair, err := m.GenerateTokenPair(&UserInfo{ID: "user-1"}, "session-1")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.Equal(t, "TOKEN_EXPIRED", code(t, err))
}

func TestWrongSecret(t *testing.T) {
	pair, err := testManager(time.Minute).GenerateTokenPair(&UserInfo{ID: "user-1"}, "session-1")
	require.NoError(t, err)

	other := NewManager(&config.JWTConfig{Secret: "another-secret", AccessExpiry: time.Minute})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.Equal(t, "TOKEN_INVALID", code(t, err))
}
