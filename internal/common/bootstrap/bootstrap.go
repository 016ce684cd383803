package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/jokes-gateway/internal/auth/service"
	"github.com/AlibekovAA/jokes-gateway/internal/common/clock"
	"github.com/AlibekovAA/jokes-gateway/internal/common/config"
	"github.com/AlibekovAA/jokes-gateway/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/jokes-gateway/internal/common/crypto"
	"github.com/AlibekovAA/jokes-gateway/internal/common/db"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	"github.com/AlibekovAA/jokes-gateway/internal/common/resilience"
	"github.com/AlibekovAA/jokes-gateway/internal/jokes"
	userrepo "github.com/AlibekovAA/jokes-gateway/internal/user/repository"
)

// Store is a credential store that can report its own health.
type Store interface {
	userrepo.Repository
	Ping(ctx context.Context) error
}

type App struct {
	Log         *logger.Logger
	Config      config.GatewayConfig
	Pool        *pgxpool.Pool
	Store       Store
	TokenIssuer *service.TokenIssuer
	AuthService *service.AuthService
	Jokes       *jokes.Provider
}

func NewGatewayApp(ctx context.Context) (*App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	log, err := logger.New(os.Getenv("LOG_DIR"), "gateway", os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	app := &App{Log: log, Config: cfg}

	if err := app.initStore(ctx); err != nil {
		app.Close()
		return nil, err
	}

	provider, err := jokes.NewProvider()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Jokes = provider

	app.TokenIssuer = service.NewTokenIssuer(
		cfg.JWTSecret,
		commoncrypto.NewUUIDGenerator(),
		cfg.TokenTTL,
		clock.NewRealClock(),
	)

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  cfg.CircuitBreakerThreshold,
		Timeout:    cfg.DBQueryTimeout,
		ResetAfter: cfg.CircuitBreakerReset,
		Name:       "credential_store",
		Ignore:     []error{userrepo.ErrUsernameAlreadyExists},
		Logger:     log,
	})

	app.AuthService = service.NewAuthService(service.AuthServiceDeps{
		Repo:           app.Store,
		Hasher:         commoncrypto.NewBcryptHasher(cfg.BcryptCost),
		TokenIssuer:    app.TokenIssuer,
		CircuitBreaker: cb,
		Log:            log,
	})

	log.Infof("gateway initialized: storage=%s token_ttl=%v bcrypt_cost=%d", cfg.Storage, cfg.TokenTTL, cfg.BcryptCost)
	return app, nil
}

func (a *App) initStore(ctx context.Context) error {
	if a.Config.Storage == constants.StorageMemory {
		a.Log.Warn("using in-memory credential store; users are lost on restart")
		a.Store = userrepo.NewMemoryRepository()
		return nil
	}

	pool, err := db.NewPool(ctx, a.Log, a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	a.Pool = pool

	if err := db.Migrate(ctx, pool, a.Log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
	a.Store = userrepo.NewPgRepository(pool)
	return nil
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
