package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
	return NewJWTService(cfg)
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID: uuid.New(),
		Email:  "prep@example.com",
		Role:   "preparer",
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:        "test-secret",
		RefreshSecret: "",
	}

	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)

	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		svc := newTestJWTService()
		input := newTestInput()

		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(pair.AccessToken)

		require.NoError(t, err)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.Email, claims.Email)
		assert.Equal(t, input.Role, claims.Role)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
	})

	t.Run("rejects refresh token", func(t *testing.T) {
		svc := newTestJWTService()

		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		// Refresh token is signed with a different secret, so it fails
		// signature verification before the type check
		_, err = svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := newTestJWTService()

		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		cfg := config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  -1 * time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "test-issuer",
			MaxRefreshCount:        10,
		}
		svc := NewJWTService(cfg)

		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	t.Run("issues a new pair with updated role", func(t *testing.T) {
		svc := newTestJWTService()
		input := newTestInput()

		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		refreshed, err := svc.RefreshTokenPair(pair.RefreshToken, input.Email, "admin")

		require.NoError(t, err)
		claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, input.UserID.String(), claims.UserID)

		refreshClaims, err := svc.ValidateRefreshToken(refreshed.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, 1, refreshClaims.RefreshCount)
	})

	t.Run("rejects access token", func(t *testing.T) {
		svc := newTestJWTService()

		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.RefreshTokenPair(pair.AccessToken, "x@example.com", "client")
		assert.Error(t, err)
	})

	t.Run("enforces max refresh count", func(t *testing.T) {
		cfg := config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "test-issuer",
			MaxRefreshCount:        1,
		}
		svc := NewJWTService(cfg)
		input := newTestInput()

		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		first, err := svc.RefreshTokenPair(pair.RefreshToken, input.Email, input.Role)
		require.NoError(t, err)

		_, err = svc.RefreshTokenPair(first.RefreshToken, input.Email, input.Role)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})
}

func TestClaims_HasRole(t *testing.T) {
	claims := &Claims{Role: "preparer"}

	assert.True(t, claims.HasRole("preparer"))
	assert.True(t, claims.HasRole("admin", "preparer"))
	assert.False(t, claims.HasRole("admin"))
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	t.Run("round trip", func(t *testing.T) {
		hash, err := hasher.Hash("correct horse battery")
		require.NoError(t, err)
		assert.True(t, hasher.Verify(hash, "correct horse battery"))
		assert.False(t, hasher.Verify(hash, "wrong password"))
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := hasher.Hash("short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}
