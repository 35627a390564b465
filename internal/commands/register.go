package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/session"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
	name     string
}

// SetCredentials sets the account details (for testing).
func (c *RegisterCmd) SetCredentials(email, password, name string) {
	c.email = email
	c.password = password
	c.name = name
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "taskdeck register --email <email> --password <password> [--name <name>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.name, "name", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	if c.email == "" || c.password == "" {
		fmt.Fprintln(errOut, "error: email and password required")
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := app.Auth.Register(ctx, c.email, c.password, c.name); err != nil {
		var authErr *session.AuthError
		if errors.As(err, &authErr) {
			fmt.Fprintf(errOut, "error: %s\n", authErr.Message)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
