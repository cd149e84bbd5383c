// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskpro/internal/app"
	"taskpro/internal/config"
)

// Access is what the dispatcher prepares before a command runs.
type Access int

const (
	// AccessNone commands get no App (help, version, serve).
	AccessNone Access = iota
	// AccessBackend commands get a started App, signed in or not.
	AccessBackend
	// AccessSession commands get a started App with a live session.
	AccessSession
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Access reports what must be set up before Run.
	Access() Access

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command and returns its exit code.
	// a is nil when Access() is AccessNone.
	Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int
}
