// Package main is the entry point for the taskpro CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskpro/internal/app"
	"taskpro/internal/backend"
	"taskpro/internal/cli"
	"taskpro/internal/commands"
	"taskpro/internal/config"
	"taskpro/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
		store, err := backend.Open(cfg)
		if err != nil {
			return nil, err
		}
		return app.New(store, session.NewFileStore(cfg.SessionPath()), logger), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
