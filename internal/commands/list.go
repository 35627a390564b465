package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command: fetches the board with the
// given filter set and prints it.
type ListCmd struct {
	status   string
	priority string
	search   string
	category string
	due      string
	sortBy   string
	order    string
	page     int
	limit    int
}

// SetFilters sets the filter flags (for testing).
func (c *ListCmd) SetFilters(status, priority, search string) {
	c.status = status
	c.priority = priority
	c.search = search
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskdeck list [--status <s>] [--priority <p>] [--search <text>] [--category <id>] [--due <date>] [--sort <field>] [--order asc|desc] [--page <n>]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.sortBy, "sort", "", "")
	fs.StringVar(&c.order, "order", "", "")
	fs.IntVar(&c.page, "page", 0, "")
	fs.IntVar(&c.limit, "limit", 0, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	if c.status != "" && !api.ValidStatus(api.TaskStatus(c.status)) {
		fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
		return exitcode.UserError
	}
	if c.priority != "" && !api.ValidPriority(api.TaskPriority(c.priority)) {
		fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority)
		return exitcode.UserError
	}
	if c.page < 0 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}

	filters := api.Filters{
		Search:     c.search,
		Status:     api.TaskStatus(c.status),
		Priority:   api.TaskPriority(c.priority),
		CategoryID: c.category,
		DueDate:    c.due,
		SortBy:     c.sortBy,
		SortOrder:  c.order,
		Page:       c.page,
		Limit:      c.limit,
	}

	app.Tasks.Fetch(ctx, filters)
	if msg := app.Tasks.Err(); msg != "" {
		fmt.Fprintf(errOut, "error: backend error: %s\n", msg)
		return exitcode.BackendError
	}

	tasks := app.Tasks.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	for i, task := range tasks {
		output.FormatTask(out, i+1, task)
	}
	return exitcode.Success
}
