package security_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const strongSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewKeyManager(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		_, err := security.NewKeyManager("curto", zaptest.NewLogger(t))
		require.ErrorIs(t, err, security.ErrWeakSecret)
	})

	t.Run("warns below recommended length", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		_, err := security.NewKeyManager(strings.Repeat("a", 40), zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("strong secret is silent", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		_, err := security.NewKeyManager(strongSecret, zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, 0, logs.Len())
	})
}

func TestKeyManager_Tokens(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	km, err := security.NewKeyManager(strongSecret, zaptest.NewLogger(t), security.WithTimeFunc(clock))
	require.NoError(t, err)

	t.Run("round trip before expiry", func(t *testing.T) {
		token, err := km.GenerateToken("admin@clinica.com", time.Hour)
		require.NoError(t, err)

		parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
		require.NoError(t, err)
		assert.Equal(t, "HS512", parsed.Method.Alg())

		subject, err := km.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin@clinica.com", subject)
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		token, err := km.GenerateToken("admin@clinica.com", time.Hour)
		require.NoError(t, err)

		later, err := security.NewKeyManager(strongSecret, zaptest.NewLogger(t),
			security.WithTimeFunc(func() time.Time { return now.Add(2 * time.Hour) }))
		require.NoError(t, err)

		_, err = later.VerifyToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("rejects other signing key", func(t *testing.T) {
		other, err := security.NewKeyManager(strings.Repeat("z", 64), zaptest.NewLogger(t), security.WithTimeFunc(clock))
		require.NoError(t, err)

		token, err := other.GenerateToken("admin@clinica.com", time.Hour)
		require.NoError(t, err)

		_, err = km.VerifyToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("rejects other algorithm", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "admin@clinica.com",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(strongSecret))
		require.NoError(t, err)

		_, err = km.VerifyToken(token)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		_, err := km.VerifyToken("isto.nao.e-um-token")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestPasswordHasher(t *testing.T) {
	hasher := security.NewPasswordHasher(4)

	hash, err := hasher.Hash("s3nh@forte")
	require.NoError(t, err)
	assert.NotEqual(t, "s3nh@forte", hash)

	assert.NoError(t, hasher.Verify(hash, "s3nh@forte"))
	assert.ErrorIs(t, hasher.Verify(hash, "errada"), security.ErrPasswordMismatch)

	_, err = hasher.Hash(strings.Repeat("a", security.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, security.ErrPasswordTooLong)

	_, err = hasher.Hash(strings.Repeat("a", security.MaxPasswordBytes))
	assert.NoError(t, err)

	err = hasher.Verify("nao-e-bcrypt", "s3nh@forte")
	require.Error(t, err)
	assert.NotErrorIs(t, err, security.ErrPasswordMismatch)
}
