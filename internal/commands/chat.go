package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/exitcode"
)

func init() {
	Register(&ChatCmd{})
}

// ChatCmd sends one message to the assistant and prints the reply.
// A thin request/response loop; the assistant itself lives server-side.
type ChatCmd struct{}

func (c *ChatCmd) Name() string      { return "chat" }
func (c *ChatCmd) Aliases() []string { return nil }
func (c *ChatCmd) Synopsis() string  { return "Ask the assistant" }
func (c *ChatCmd) Usage() string     { return "taskdeck chat <message...>" }
func (c *ChatCmd) NeedsAuth() bool   { return true }

func (c *ChatCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ChatCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		fmt.Fprintln(errOut, "error: message required")
		return exitcode.UserError
	}

	reply, err := app.Chat.Chat(ctx, message)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	fmt.Fprintln(out, reply)
	return exitcode.Success
}
