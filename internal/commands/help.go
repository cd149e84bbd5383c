package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskpro help" }
func (c *HelpCmd) Access() Access    { return AccessNone }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText(DefaultRegistry))
	return exitcode.Success
}

// HelpText renders usage for every command in r.
func HelpText(r *Registry) string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	b.WriteString("  taskpro                  List tasks\n")
	for _, cmd := range r.All() {
		fmt.Fprintf(&b, "  %-24s %s\n", cmd.Name(), cmd.Synopsis())
		fmt.Fprintf(&b, "      %s\n", cmd.Usage())
	}
	b.WriteString(helpFooter)
	return b.String()
}

const helpFooter = `
Task flags:
  --description, -d <text>   Optional, at most 1000 characters
  --status <status>          pending (default), in-progress or completed
  --priority, -p <priority>  low, medium (default) or high
  --due <YYYY-MM-DD>         Optional due date

A <ref> is the number shown by 'taskpro list' or a task id.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
