package constants

import "time"

const (
	UsernameMaxLength  = 64
	PasswordMaxBytes   = 72
	JWTSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBMigrationTimeout    = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultGatewayHTTPPort = "8080"

	DefaultTokenTTL           = 1 * time.Hour
	DefaultBcryptCost         = 12
	DefaultAuthRequestTimeout = 5 * time.Second
	DefaultDBQueryTimeout     = 5 * time.Second

	DefaultCircuitBreakerThreshold = 5
	DefaultCircuitBreakerReset     = 10 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
