package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/jokes-gateway/internal/common/bootstrap"
	srv "github.com/AlibekovAA/jokes-gateway/internal/common/server"
	"github.com/AlibekovAA/jokes-gateway/internal/gateway"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewGatewayApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start gateway: %v\n", err)
		os.Exit(1)
	}
	log := app.Log

	handler := gateway.NewRouter(gateway.RouterDeps{
		Auth:           app.AuthService,
		Verifier:       app.TokenIssuer.Verifier(),
		Jokes:          app.Jokes,
		Store:          app.Store,
		RequestTimeout: app.Config.RequestTimeout,
		Log:            log,
	})

	server := srv.NewServer(srv.DefaultServerConfig(app.Config.HTTPPort), handler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("gateway: stopping background workers")
			cancel()
			return nil
		},
		func(ctx context.Context) error {
			log.Infof("gateway: closing credential store")
			app.Close()
			return nil
		},
	}

	if err := srv.StartWithGracefulShutdown(server, log, "gateway", shutdownHooks); err != nil {
		app.Close()
		os.Exit(1)
	}
}
