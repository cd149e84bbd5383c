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
	"taskpro/internal/tasks"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given flags change; the
// rest of the form is pre-filled from the stored task.
type EditCmd struct {
	title       optionalString
	description optionalString
	status      optionalString
	priority    optionalString
	due         optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string     { return "taskpro edit [--title <title>] [task flags] <ref>" }
func (c *EditCmd) Access() Access    { return AccessSession }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !c.title.set && !c.description.set && !c.status.set && !c.priority.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	task, err := lookupTask(ctx, a, ref)
	if err != nil {
		return report(errOut, err)
	}

	in := tasks.InputFrom(task)
	if c.title.set {
		in.Title = c.title.value
	}
	if c.description.set {
		in.Description = c.description.value
	}
	if c.due.set {
		in.DueDate = c.due.value
	}
	if c.status.set {
		if in.Status, err = parseStatus(c.status.value); err != nil || in.Status == "" {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status.value)
			return exitcode.UserError
		}
	}
	if c.priority.set {
		if in.Priority, err = parsePriority(c.priority.value); err != nil || in.Priority == "" {
			fmt.Fprintf(errOut, "error: invalid priority: %s\n", c.priority.value)
			return exitcode.UserError
		}
	}

	if err := a.UpdateTask(ctx, task.ID, in); err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, MsgTaskUpdated)
	}
	return exitcode.Success
}

// setStatus moves a task to status, keeping every other field.
func setStatus(ctx context.Context, a *app.App, ref TaskRef, status service.Status) error {
	task, err := lookupTask(ctx, a, ref)
	if err != nil {
		return err
	}
	in := tasks.InputFrom(task)
	in.Status = status
	return a.UpdateTask(ctx, task.ID, in)
}
