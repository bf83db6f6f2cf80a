package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAppName         = "AI Rythu Mitra"
	defaultAppEnv          = "development"
	defaultPort            = "8000"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultAccessTokenTTL  = 30 * time.Minute
	defaultJWTIssuer       = "ai-rythu-mitra"
	defaultLoginRate       = 5
	defaultCORSOrigins     = "*"
	defaultMaxUploadBytes  = 10 << 20
	defaultKafkaTopic      = "farmer-notifications"
	defaultS3Region        = "us-east-1"
	devSecretKey           = "dev-secret-change-me"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	tokenMinutesEnvVar     = "ACCESS_TOKEN_EXPIRE_MINUTES"
	tokenDurationEnvVar    = "ACCESS_TOKEN_TTL"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	LoginRatePerMinute int
	CORSOrigins        string
	MaxUploadBytes     int

	Kafka KafkaConfig
	S3    S3Config
}

// KafkaConfig describes the optional notification event sink.
type KafkaConfig struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

// Enabled reports whether a broker has been configured.
func (k KafkaConfig) Enabled() bool { return k.Broker != "" }

// S3Config describes the optional object store for soil reports.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a bucket has been configured.
func (s S3Config) Enabled() bool { return s.Bucket != "" }

// Load reads a .env file when present, then populates a Config from the environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv populates a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
		JWTSecret:      os.Getenv("SECRET_KEY"),
		JWTIssuer:      getEnv("JWT_ISSUER", defaultJWTIssuer),
		AccessTokenTTL: defaultAccessTokenTTL,
		BcryptCost:     bcrypt.DefaultCost,
		CORSOrigins:    getEnv("CORS_ORIGINS", defaultCORSOrigins),
		Kafka: KafkaConfig{
			Broker:   os.Getenv("KAFKA_BROKER"),
			Topic:    getEnv("KAFKA_TOPIC", defaultKafkaTopic),
			Username: os.Getenv("KAFKA_USERNAME"),
			Password: os.Getenv("KAFKA_PASSWORD"),
		},
		S3: S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", defaultS3Region),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, time.Second, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, time.Second, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = durationFromEnv(tokenMinutesEnvVar, tokenDurationEnvVar, time.Minute, defaultAccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("access token lifetime must be positive")
	}
	if cfg.BcryptCost, err = intFromEnv("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.LoginRatePerMinute, err = intFromEnv("LOGIN_RATE_LIMIT_PER_MINUTE", defaultLoginRate); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadBytes, err = intFromEnv("MAX_UPLOAD_BYTES", defaultMaxUploadBytes); err != nil {
		return Config{}, err
	}

	if cfg.IsDev() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devSecretKey
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("SECRET_KEY must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in a local development mode, where
// missing backing services fall back to in-memory implementations.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// durationFromEnv prefers an integer count of unit from countKey and falls back
// to a Go duration string from durKey.
func durationFromEnv(countKey, durKey string, unit, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(countKey); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", countKey, err)
		}
		return time.Duration(n) * unit, nil
	}
	if v := os.Getenv(durKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
