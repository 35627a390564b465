package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/store"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. The row is removed locally only
// after the server confirms the delete.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdeck rm <task-id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}

	if err := app.Tasks.Delete(ctx, args[0]); err != nil {
		if errors.Is(err, store.ErrMutationInFlight) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if api.IsStatus(err, 404) {
			fmt.Fprintf(errOut, "error: task not found: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", app.Tasks.Err())
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
