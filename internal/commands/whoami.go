package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the authenticated identity.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskdeck whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	user := currentUser(app)
	if user == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdeck login)")
		return exitcode.AuthError
	}
	output.FormatUser(out, *user)
	return exitcode.Success
}
