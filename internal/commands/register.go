package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/service"
	"taskpro/internal/validate"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	name     string
	email    string
	password string
	confirm  optionalString
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "taskpro register --name <name> --email <email> --password <pw> [--confirm <pw>]"
}
func (c *RegisterCmd) Access() Access { return AccessBackend }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	c.confirm = optionalString{}
	fs.Var(&c.confirm, "confirm", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	form := validate.Registration{
		FullName:        c.name,
		Email:           c.email,
		Password:        c.password,
		ConfirmPassword: c.password,
	}
	if c.confirm.set {
		form.ConfirmPassword = c.confirm.value
	}
	if err := form.Validate(); err != nil {
		return report(errOut, err)
	}

	if err := a.Session.SignUp(ctx, form.Email, form.Password, form.FullName); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Fprintf(errOut, "error: %s: %v\n", MsgSignUpFailed, service.ErrEmailTaken)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %s: %v\n", MsgSignUpFailed, err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, MsgAccountCreated)
	}
	return exitcode.Success
}
