package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/lunchroulette/lunchd/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the collection service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.reloadConfig(cmd)

	store, cleanup, err := r.openStore(config, cmd.String("backend"))
	if err != nil {
		return err
	}
	defer cleanup()

	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = int(port)
	}

	router := server.NewBasicRouter()
	router.Use(
		server.RequestID(),
		server.Logging(r.logger),
		server.RateLimit(config.Server.RateLimit, config.Server.RateBurst),
	)
	router.Handler(server.NewUsersHandler(store, r.logger))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(config.Server, router, r.logger).Run(ctx)
}
