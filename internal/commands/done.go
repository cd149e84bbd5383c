package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&StartCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskpro done <ref>" }
func (c *DoneCmd) Access() Access    { return AccessSession }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, a, args, service.StatusCompleted, out, errOut)
}

// StartCmd marks a task in progress.
type StartCmd struct{}

func (c *StartCmd) Name() string      { return "start" }
func (c *StartCmd) Aliases() []string { return nil }
func (c *StartCmd) Synopsis() string  { return "Mark a task in progress" }
func (c *StartCmd) Usage() string     { return "taskpro start <ref>" }
func (c *StartCmd) Access() Access    { return AccessSession }

func (c *StartCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StartCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, a, args, service.StatusInProgress, out, errOut)
}

func runSetStatus(ctx context.Context, cfg *config.Config, a *app.App, args []string, status service.Status, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := setStatus(ctx, a, ref, status); err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
