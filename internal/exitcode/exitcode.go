// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, failed validation and unknown tasks.
	UserError = 1

	// AuthError means there is no usable session or the credentials were rejected.
	AuthError = 2

	// BackendError covers store, network and server failures.
	BackendError = 3
)
