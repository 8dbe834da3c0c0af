package jwt

import (
	"testing"
	"time"

	"github.com/medflow/medsupply-backend/pkg/config"
	"github.com/medflow/medsupply-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTIssuer:     "medsupply-test",
		SessionExpiry: time.Hour,
	}
}

func TestManager_GenerateAndValidate(t *testing.T) {
	m := NewManager(testConfig())

	token, err := m.Generate("test", "session-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	claims, err := m.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "test", claims.Username)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "medsupply-test", claims.Issuer)
}

func TestManager_Validate_Expired(t *testing.T) {
	m := NewManager(testConfig())
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Generate("test", "session-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTokenExpired))
}

func TestManager_Validate_WrongSecret(t *testing.T) {
	token, err := NewManager(testConfig()).Generate("test", "session-1")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.JWTSecret = "other-secret"
	_, err = NewManager(cfg).Validate(token.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTokenInvalid))
}

func TestManager_Validate_Garbage(t *testing.T) {
	_, err := NewManager(testConfig()).Validate("not-a-token")
	assert.True(t, errors.Is(err, errors.ErrTokenInvalid))
}
