package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"taskpro/internal/app"
	"taskpro/internal/cli"
	"taskpro/internal/commands"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/service"
	"taskpro/internal/testutil"
)

// testFactory creates an app factory over the given FakeService. The
// session is kept in tokens across dispatches, like session.json would be.
func testFactory(svc *testutil.FakeService, tokens *testutil.MemTokens) cli.AppFactory {
	return func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
		return app.New(svc, tokens, logger), nil
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	args = append([]string{args[0], "--config", t.TempDir()}, args[1:]...)
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func newDispatcher() (*cli.Dispatcher, *testutil.FakeService, *testutil.MemTokens) {
	svc := testutil.NewFakeService()
	tokens := &testutil.MemTokens{}
	return cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, tokens)), svc, tokens
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _, _ := newDispatcher()

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d, _, _ := newDispatcher()

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	d, _, _ := newDispatcher()

	stdout, stderr, code := run(t, d, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	d, _, _ := newDispatcher()

	stdout, stderr, code := run(t, d, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskpro 0.1.0\n" {
		t.Errorf("expected 'taskpro 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	d, _, _ := newDispatcher()

	_, stderr, code := run(t, d, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	d, _, _ := newDispatcher()

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"list", "--status"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -status\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	d, _, _ := newDispatcher()

	stdout, stderr, code := run(t, d, "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: not logged in (run: taskpro login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	d, svc, tokens := newDispatcher()
	ada := svc.AddUser("ada@example.com", "secret1", "Ada Lovelace")
	tokens.Save(ada)
	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	expected := "   1  [ ] high   Buy milk\n"
	if stdout.String() != expected {
		t.Errorf("expected %q, got %q", expected, stdout.String())
	}
}

func TestDispatcher_SessionSurvivesAcrossRuns(t *testing.T) {
	d, svc, tokens := newDispatcher()
	svc.AddUser("ada@example.com", "secret1", "Ada Lovelace")

	if _, stderr, code := run(t, d, "login", "--email", "ada@example.com", "--password", "secret1"); code != exitcode.Success {
		t.Fatalf("login: exit %d, stderr %q", code, stderr)
	}
	if _, ok := tokens.Stored(); !ok {
		t.Fatal("expected session to be persisted")
	}

	if _, stderr, code := run(t, d, "add", "--priority", "low", "Water", "plants"); code != exitcode.Success {
		t.Fatalf("add: exit %d, stderr %q", code, stderr)
	}

	stdout, _, code := run(t, d, "list")
	if code != exitcode.Success {
		t.Fatalf("list: exit %d", code)
	}
	if stdout != "   1  [ ] low    Water plants\n" {
		t.Errorf("list output = %q", stdout)
	}

	if _, _, code := run(t, d, "logout"); code != exitcode.Success {
		t.Fatalf("logout: exit %d", code)
	}
	if _, _, code := run(t, d, "list"); code != exitcode.AuthError {
		t.Errorf("list after logout: exit %d, want %d", code, exitcode.AuthError)
	}
}

func TestDispatcher_RevokedSessionIsDiscarded(t *testing.T) {
	d, svc, tokens := newDispatcher()
	ada := svc.AddUser("ada@example.com", "secret1", "Ada Lovelace")
	tokens.Save(ada)
	svc.SignOut(context.Background(), ada.Token)

	_, _, code := run(t, d, "whoami")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if _, ok := tokens.Stored(); ok {
		t.Error("expected stale session to be cleared")
	}
}
