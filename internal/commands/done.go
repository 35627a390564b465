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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command via the dedicated completion
// endpoint.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskdeck done <task-id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}

	task, err := app.Tasks.Complete(ctx, args[0])
	if err != nil {
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
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}
