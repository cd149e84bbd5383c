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
	"taskpro/internal/service"
	"taskpro/internal/validate"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// taskFlags are the form fields shared by add and create.
type taskFlags struct {
	description string
	status      string
	priority    string
	due         string
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.description, "description", "", "")
	fs.StringVar(&f.description, "d", "", "")
	fs.StringVar(&f.status, "status", string(service.StatusPending), "")
	fs.StringVar(&f.priority, "priority", string(service.PriorityMedium), "")
	fs.StringVar(&f.priority, "p", string(service.PriorityMedium), "")
	fs.StringVar(&f.due, "due", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "taskpro add [task flags] <title...>" }
func (c *AddCmd) Access() Access    { return AccessSession }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) { c.flags.register(fs) }

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, a, c.flags, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	flags taskFlags
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string     { return "taskpro create [task flags] <title...>" }
func (c *CreateCmd) Access() Access    { return AccessSession }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) { c.flags.register(fs) }

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, a, c.flags, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, a *app.App, f taskFlags, args []string, out, errOut io.Writer) int {
	status, err := parseStatus(f.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	priority, err := parsePriority(f.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	in := validate.TaskInput{
		Title:       strings.Join(args, " "),
		Description: f.description,
		Status:      status,
		Priority:    priority,
		DueDate:     f.due,
	}
	task, err := a.CreateTask(ctx, in)
	if err != nil {
		return report(errOut, err)
	}
	a.Logger.Debug("task created", "task_id", task.ID)

	if !cfg.Quiet {
		fmt.Fprintln(out, MsgTaskCreated)
	}
	return exitcode.Success
}
