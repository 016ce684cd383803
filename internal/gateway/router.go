package gateway

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/jokes-gateway/internal/auth/http"
	"github.com/AlibekovAA/jokes-gateway/internal/auth/service"
	commonhttp "github.com/AlibekovAA/jokes-gateway/internal/common/http"
	"github.com/AlibekovAA/jokes-gateway/internal/common/jwtverify"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	"github.com/AlibekovAA/jokes-gateway/internal/jokes"
	jokeshttp "github.com/AlibekovAA/jokes-gateway/internal/jokes/http"
)

type RouterDeps struct {
	Auth           *service.AuthService
	Verifier       *jwtverify.Verifier
	Jokes          *jokes.Provider
	Store          commonhttp.Pinger
	RequestTimeout time.Duration
	Log            *logger.Logger
}

// NewRouter mounts every public route behind the shared middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	authHandler := authhttp.NewHandler(deps.Auth, authhttp.Config{RequestTimeout: deps.RequestTimeout}, deps.Log)
	jokesHandler := jokeshttp.NewHandler(deps.Jokes, deps.Verifier, deps.Log)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authHandler)
	mux.Handle("/api/jokes", jokesHandler)
	mux.HandleFunc("/health", commonhttp.HealthHandler(deps.Store, deps.Log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil, commonhttp.TraceIDFromContext(r.Context()))
	})

	return commonhttp.BuildBaseHandler(deps.Log, mux)
}
