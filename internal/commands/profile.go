package commands

import (
	"context"
	"flag"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/output"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd prints the profile card.
type ProfileCmd struct{}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return nil }
func (c *ProfileCmd) Synopsis() string  { return "Show your profile and task statistics" }
func (c *ProfileCmd) Usage() string     { return "taskpro profile" }
func (c *ProfileCmd) Access() Access    { return AccessSession }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if err := a.Profile.Refresh(ctx); err != nil {
		return report(errOut, err)
	}
	card, _ := a.Profile.Card()
	output.FormatProfile(out, card)
	return exitcode.Success
}
