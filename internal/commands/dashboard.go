package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/tui"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd runs the interactive terminal dashboard.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"ui"} }
func (c *DashboardCmd) Synopsis() string  { return "Open the interactive dashboard" }
func (c *DashboardCmd) Usage() string     { return "taskpro dashboard" }
func (c *DashboardCmd) Access() Access    { return AccessSession }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if err := tui.Run(ctx, a); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
