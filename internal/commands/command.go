// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
)

// App bundles the session manager and the stores a command drives.
// Commands never touch the wire directly.
type App struct {
	Auth       *session.Manager
	Tasks      *store.TaskStore
	Categories *store.CategoryStore
	Chat       ChatAPI
}

// ChatAPI is the assistant endpoint. *api.Client satisfies it.
type ChatAPI interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session.
	// The dispatcher resolves the session before running these.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings).
	// app is nil only when no factory produced one.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int
}

// currentUser returns the authenticated user from the app, or nil.
func currentUser(app *App) *api.User {
	if app == nil || app.Auth == nil {
		return nil
	}
	return app.Auth.User()
}
