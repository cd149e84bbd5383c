package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints one task in full.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show every field of a task" }
func (c *ShowCmd) Usage() string     { return "taskpro show <ref>" }
func (c *ShowCmd) Access() Access    { return AccessSession }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	task, err := lookupTask(ctx, a, ref)
	if err != nil {
		return report(errOut, err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
