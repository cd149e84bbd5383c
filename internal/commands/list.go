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
	"taskpro/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskpro` (no args) and `taskpro list [filters]`.
type ListCmd struct {
	search   string
	status   string
	priority string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks, newest first" }
func (c *ListCmd) Usage() string {
	return "taskpro list [--search <text>] [--status <status>] [--priority <priority>]"
}
func (c *ListCmd) Access() Access { return AccessSession }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	status, err := parseStatus(c.status)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	priority, err := parsePriority(c.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	filter := tasks.Filter{Query: c.search, Status: status, Priority: priority}

	if err := a.List.Refresh(ctx); err != nil {
		return report(errOut, err)
	}
	all := a.List.Tasks()

	// Numbers always index the unfiltered list so refs stay stable.
	shown := 0
	for i, task := range all {
		if !filter.Match(task) {
			continue
		}
		output.FormatTask(out, i+1, task)
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		if len(all) == 0 {
			fmt.Fprintln(out, "no tasks found")
		} else {
			fmt.Fprintln(out, "no matching tasks")
		}
	}
	return exitcode.Success
}
