// Package main is the entry point for the taskdeck CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskdeck/internal/api"
	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/credentials"
	"taskdeck/internal/logger"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config) (*commands.App, error) {
		level := cfg.Settings.Log.Level
		if cfg.Debug {
			level = "DEBUG"
		}
		log := logger.New(logger.Options{
			Level:  level,
			Format: cfg.Settings.Log.Format,
		})
		if cfg.Quiet && !cfg.Debug {
			log = logger.Discard()
		}

		creds := credentials.NewFileStore(cfg.TokenPath())
		client := api.New(cfg.APIURL(), cfg.APITimeout(), creds, log)
		auth := session.NewManager(client, creds, session.NopNavigator{}, log)

		return &commands.App{
			Auth:       auth,
			Tasks:      store.NewTaskStore(client, auth, log),
			Categories: store.NewCategoryStore(client, auth, log),
			Chat:       client,
		}, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
