package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
	"taskdeck/internal/output"
)

func init() {
	Register(&CatsCmd{})
	Register(&NewCatCmd{})
}

// CatsCmd lists categories.
type CatsCmd struct{}

func (c *CatsCmd) Name() string      { return "cats" }
func (c *CatsCmd) Aliases() []string { return []string{"categories"} }
func (c *CatsCmd) Synopsis() string  { return "List categories" }
func (c *CatsCmd) Usage() string     { return "taskdeck cats [common flags]" }
func (c *CatsCmd) NeedsAuth() bool   { return true }

func (c *CatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CatsCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	app.Categories.Fetch(ctx)
	if msg := app.Categories.Err(); msg != "" {
		fmt.Fprintf(errOut, "error: backend error: %s\n", msg)
		return exitcode.BackendError
	}

	cats := app.Categories.Categories()
	if len(cats) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no categories found")
		}
		return exitcode.Success
	}

	for _, cat := range cats {
		output.FormatCategory(out, cat)
	}
	return exitcode.Success
}

// NewCatCmd creates a category.
type NewCatCmd struct {
	color string
}

func (c *NewCatCmd) Name() string      { return "newcat" }
func (c *NewCatCmd) Aliases() []string { return nil }
func (c *NewCatCmd) Synopsis() string  { return "Create a category" }
func (c *NewCatCmd) Usage() string     { return "taskdeck newcat [--color <hex>] <name...>" }
func (c *NewCatCmd) NeedsAuth() bool   { return true }

func (c *NewCatCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.color, "color", "", "")
}

func (c *NewCatCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: name required")
		return exitcode.UserError
	}

	cat, err := app.Categories.Create(ctx, name, c.color)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", app.Categories.Err())
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", cat.ID)
	}
	return exitcode.Success
}
