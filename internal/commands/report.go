package commands

import (
	"errors"
	"fmt"
	"io"

	"taskpro/internal/exitcode"
	"taskpro/internal/output"
	"taskpro/internal/service"
	"taskpro/internal/tasks"
	"taskpro/internal/validate"
)

const (
	MsgTaskCreated    = output.MsgTaskCreated
	MsgTaskUpdated    = output.MsgTaskUpdated
	MsgAccountCreated = output.MsgAccountCreated
	MsgSaveFailed     = output.MsgSaveFailed
	MsgSignUpFailed   = output.MsgSignUpFailed
)

// report prints err to errOut and returns the matching exit code.
func report(errOut io.Writer, err error) int {
	var (
		fe  *validate.FieldError
		me  *tasks.MutationError
		oor errOutOfRange
	)
	switch {
	case errors.As(err, &fe):
		fmt.Fprintf(errOut, "error: %s\n", fe.Message)
		return exitcode.UserError
	case errors.Is(err, validate.ErrUnknownValue):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotAuthenticated):
		fmt.Fprintln(errOut, "error: not logged in (run: taskpro login)")
		return exitcode.AuthError
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintf(errOut, "error: %v\n", service.ErrInvalidCredentials)
		return exitcode.AuthError
	case errors.As(err, &oor), errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrEmailTaken):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &me):
		fmt.Fprintf(errOut, "error: %s: %v\n", MsgSaveFailed, me.Err)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// optionalString is a string flag that remembers whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// parseStatus accepts "" as no filter.
func parseStatus(s string) (service.Status, error) {
	st := service.Status(s)
	if s != "" && !st.Valid() {
		return "", fmt.Errorf("invalid status: %s (want pending, in-progress or completed)", s)
	}
	return st, nil
}

// parsePriority accepts "" as no filter.
func parsePriority(s string) (service.Priority, error) {
	p := service.Priority(s)
	if s != "" && !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s (want low, medium or high)", s)
	}
	return p, nil
}
