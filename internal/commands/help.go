package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdeck help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskdeck                                     List tasks
  taskdeck list [common flags] [filter flags]  List tasks with filters
  taskdeck add [common flags] [--priority <p>] [--category <id>] [--due <date>] [--notes <text>] <title...>
  taskdeck edit [common flags] [field flags] <task-id>
  taskdeck done [common flags] <task-id>
  taskdeck rm [common flags] <task-id>
  taskdeck cats [common flags]
  taskdeck newcat [common flags] [--color <hex>] <name...>
  taskdeck chat [common flags] <message...>
  taskdeck login --email <email> --password <password>
  taskdeck register --email <email> --password <password> [--name <name>]
  taskdeck logout [common flags]
  taskdeck whoami [common flags]
  taskdeck help
  taskdeck version

Filter flags (list):
  --status <s>     pending, in_progress, completed, archived
  --priority <p>   low, medium, high
  --search <text>  Title search
  --category <id>  Filter by category
  --due <date>     Filter by due date
  --sort <field>   createdAt, updatedAt, dueDate, priority
  --order <o>      asc, desc

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
