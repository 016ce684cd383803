package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlibekovAA/jokes-gateway/internal/common/constants"
	commonerrors "github.com/AlibekovAA/jokes-gateway/internal/common/errors"
)

type GatewayConfig struct {
	HTTPPort                string
	Storage                 string
	DatabaseURL             string
	JWTSecret               string
	TokenTTL                time.Duration
	BcryptCost              int
	RequestTimeout          time.Duration
	DBQueryTimeout          time.Duration
	CircuitBreakerThreshold int32
	CircuitBreakerReset     time.Duration
	LogDir                  string
	LogLevel                string
}

// LoadDotEnv reads a .env file into the process environment outside
// production. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if os.Getenv("APP_ENV") == "production" {
		return nil
	}
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func LoadGatewayConfig() (GatewayConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return GatewayConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return GatewayConfig{}, err
	}

	storage := getEnv("STORAGE", constants.StoragePostgres)
	if storage != constants.StoragePostgres && storage != constants.StorageMemory {
		return GatewayConfig{}, fmt.Errorf("unsupported STORAGE %q", storage)
	}

	var databaseURL string
	if storage == constants.StoragePostgres {
		databaseURL, err = mustEnv("DATABASE_URL")
		if err != nil {
			return GatewayConfig{}, err
		}
	}

	return GatewayConfig{
		HTTPPort:                getEnv("GATEWAY_HTTP_PORT", constants.DefaultGatewayHTTPPort),
		Storage:                 storage,
		DatabaseURL:             databaseURL,
		JWTSecret:               jwtSecret,
		TokenTTL:                getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL),
		BcryptCost:              getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),
		RequestTimeout:          getDurationEnv("AUTH_REQUEST_TIMEOUT", constants.DefaultAuthRequestTimeout),
		DBQueryTimeout:          getDurationEnv("DB_QUERY_TIMEOUT", constants.DefaultDBQueryTimeout),
		CircuitBreakerThreshold: int32(getIntEnv("CB_THRESHOLD", constants.DefaultCircuitBreakerThreshold)),
		CircuitBreakerReset:     getDurationEnv("CB_RESET", constants.DefaultCircuitBreakerReset),
		LogDir:                  os.Getenv("LOG_DIR"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s is not set", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
