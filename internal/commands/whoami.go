package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the signed-in identity.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in account" }
func (c *WhoamiCmd) Usage() string     { return "taskpro whoami" }
func (c *WhoamiCmd) Access() Access    { return AccessSession }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	id, ok := a.Session.Current()
	if !ok {
		fmt.Fprintln(errOut, "error: not logged in (run: taskpro login)")
		return exitcode.AuthError
	}
	fmt.Fprintf(out, "%s (%s)\n", id.Email, id.UserID)
	return exitcode.Success
}
