package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "DATABASE_URL", "REDIS_URL", "SECRET_KEY",
		tokenMinutesEnvVar, tokenDurationEnvVar, "BCRYPT_COST",
		shutdownSecondsEnvVar, shutdownDurationEnvVar, idemTTLSecondsEnvVar, idemTTLDurEnvVar,
		"LOGIN_RATE_LIMIT_PER_MINUTE", "MAX_UPLOAD_BYTES", "KAFKA_BROKER", "S3_BUCKET",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.True(t, cfg.IsDev())
	require.Equal(t, ":8000", cfg.Address())
	require.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, devSecretKey, cfg.JWTSecret)
	require.Equal(t, 5, cfg.LoginRatePerMinute)
	require.False(t, cfg.Kafka.Enabled())
	require.False(t, cfg.S3.Enabled())
}

func TestFromEnvProductionRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := FromEnv()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/rythu")
	_, err = FromEnv()
	require.ErrorContains(t, err, "SECRET_KEY")

	t.Setenv("SECRET_KEY", "s3cret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromEnvTokenLifetime(t *testing.T) {
	clearEnv(t)

	t.Setenv(tokenDurationEnvVar, "90s")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, cfg.AccessTokenTTL)

	t.Setenv(tokenMinutesEnvVar, "15")
	cfg, err = FromEnv()
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)

	t.Setenv(tokenMinutesEnvVar, "abc")
	_, err = FromEnv()
	require.Error(t, err)
}

func TestFromEnvRejectsBadBcryptCost(t *testing.T) {
	clearEnv(t)
	t.Setenv("BCRYPT_COST", "99")

	_, err := FromEnv()
	require.ErrorContains(t, err, "BCRYPT_COST")
}
