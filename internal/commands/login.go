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
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string     { return "taskpro login --email <email> --password <pw>" }
func (c *LoginCmd) Access() Access    { return AccessBackend }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	prev, signedIn := a.Session.Current()
	if signedIn && (c.email == "" || c.email == prev.Email) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if c.email == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	if c.password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	if err := a.Session.SignIn(ctx, c.email, c.password); err != nil {
		return report(errOut, err)
	}
	// The old account stays signed in if the new login fails.
	if signedIn {
		if err := a.Store.SignOut(ctx, prev.Token); err != nil {
			a.Logger.Warn("failed to revoke previous session", "email", prev.Email, "error", err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
