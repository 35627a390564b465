package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	priority string
	category string
	due      string
	notes    string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskdeck add [--priority <p>] [--category <id>] [--due <date>] [--notes <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.notes, "notes", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if c.priority != "" && !api.ValidPriority(api.TaskPriority(c.priority)) {
		fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority)
		return exitcode.UserError
	}

	task, err := app.Tasks.Create(ctx, api.CreateTaskRequest{
		Title:       title,
		Description: c.notes,
		Priority:    api.TaskPriority(c.priority),
		CategoryID:  c.category,
		DueDate:     c.due,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", app.Tasks.Err())
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}
