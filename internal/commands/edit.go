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
	Register(&EditCmd{})
}

// EditCmd implements the edit command: a partial update of one task.
// Only flags that were set are sent.
type EditCmd struct {
	title    string
	notes    string
	status   string
	priority string
	category string
	due      string

	fs *flag.FlagSet
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "taskdeck edit [--title <t>] [--notes <n>] [--status <s>] [--priority <p>] [--category <id>] [--due <date>] <task-id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fs = fs
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.notes, "notes", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task id required")
		return exitcode.UserError
	}
	id := args[0]

	req, ok := c.buildRequest(errOut)
	if !ok {
		return exitcode.UserError
	}

	task, err := app.Tasks.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, store.ErrMutationInFlight) {
			fmt.Fprintf(errOut, "error: %v\n", err)
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

// buildRequest assembles the partial update from the flags the user
// actually set.
func (c *EditCmd) buildRequest(errOut io.Writer) (api.UpdateTaskRequest, bool) {
	var req api.UpdateTaskRequest
	set := map[string]bool{}
	if c.fs != nil {
		c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	}

	if set["title"] {
		req.Title = &c.title
	}
	if set["notes"] {
		req.Description = &c.notes
	}
	if set["status"] {
		s := api.TaskStatus(c.status)
		if !api.ValidStatus(s) {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return req, false
		}
		req.Status = &s
	}
	if set["priority"] {
		p := api.TaskPriority(c.priority)
		if !api.ValidPriority(p) {
			fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority)
			return req, false
		}
		req.Priority = &p
	}
	if set["category"] {
		req.CategoryID = &c.category
	}
	if set["due"] {
		req.DueDate = &c.due
	}

	if req == (api.UpdateTaskRequest{}) {
		fmt.Fprintln(errOut, "error: nothing to change")
		return req, false
	}
	return req, true
}
