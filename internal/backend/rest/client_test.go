package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskpro/internal/api"
	"taskpro/internal/backend/sqlstore"
	"taskpro/internal/logging"
	"taskpro/internal/service"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newServer(t *testing.T) (*httptest.Server, *clock) {
	t.Helper()
	c := &clock{t: time.Now()}
	store, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "rest.db"),
		sqlstore.WithBcryptCost(bcrypt.MinCost),
		sqlstore.WithClock(c.now),
		sqlstore.WithSessionTTL(time.Hour),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := httptest.NewServer(api.NewRouter(store, logging.Discard()))
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv, c
}

func newClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewWithHTTPClient(srv.URL, "taskpro", srv.Client())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8750", "://x"} {
		if _, err := New(u, "taskpro"); err == nil {
			t.Errorf("New(%q) should fail", u)
		}
	}
}

func TestSignUpSignInRoundTrip(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	reg, err := c.SignUp(ctx, "ada@example.com", "secret1", service.Metadata{FullName: "Ada Lovelace"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if reg.UserID == "" || reg.Token == nil || reg.Token.RefreshToken == "" {
		t.Fatalf("incomplete identity: %+v", reg)
	}

	if _, err := c.SignUp(ctx, "ada@example.com", "secret1", service.Metadata{}); !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("duplicate SignUp: err = %v", err)
	}

	in, err := c.SignIn(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if in.UserID != reg.UserID || in.Email != "ada@example.com" {
		t.Errorf("SignIn identity = %+v", in)
	}

	if _, err := c.SignIn(ctx, "ada@example.com", "wrong!"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
}

func TestTasksOverHTTP(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	ident, err := c.SignUp(ctx, "ada@example.com", "secret1", service.Metadata{FullName: "Ada"})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	desc := "2 litres"
	task, err := c.InsertTask(ctx, service.TaskRow{
		Title: "Buy milk", Description: &desc, Status: service.StatusInProgress,
		Priority: service.PriorityHigh, DueDate: &due, UserID: ident.UserID,
	})
	if err != nil {
		t.Fatalf("InsertTask: %v", err)
	}

	list, err := c.ListTasks(ctx, ident.UserID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 1 || list[0].ID != task.ID || list[0].DueText() != "2026-05-01" || list[0].DescriptionText() != desc {
		t.Fatalf("list = %+v", list)
	}

	n, err := c.UpdateTask(ctx, task.ID, service.TaskRow{
		Title: "Buy oat milk", Status: service.StatusCompleted, Priority: service.PriorityLow, UserID: ident.UserID,
	})
	if err != nil || n != 1 {
		t.Fatalf("UpdateTask = %d, %v", n, err)
	}
	n, err = c.UpdateTask(ctx, "missing", service.TaskRow{
		Title: "x", Status: service.StatusPending, Priority: service.PriorityLow, UserID: ident.UserID,
	})
	if err != nil || n != 0 {
		t.Errorf("UpdateTask(missing) = %d, %v", n, err)
	}

	p, err := c.GetProfile(ctx, ident.UserID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.FullName != "Ada" {
		t.Errorf("profile = %+v", p)
	}

	n, err = c.DeleteTask(ctx, task.ID, ident.UserID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteTask = %d, %v", n, err)
	}
}

func TestCurrentUserRefreshesExpiredToken(t *testing.T) {
	srv, clk := newServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	if _, err := c.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("SignIn before sign-up: %v", err)
	}
	ident, err := c.SignUp(ctx, "ada@example.com", "secret1", service.Metadata{})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	clk.t = clk.t.Add(2 * time.Hour)
	stale := *ident.Token
	stale.Expiry = time.Now().Add(-time.Minute)

	fresh := newClient(t, srv)
	got, err := fresh.CurrentUser(ctx, &stale)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.UserID != ident.UserID {
		t.Errorf("UserID = %q, want %q", got.UserID, ident.UserID)
	}
	if got.Token.AccessToken == stale.AccessToken {
		t.Error("expected a refreshed access token")
	}
	if _, err := fresh.ListTasks(ctx, got.UserID); err != nil {
		t.Errorf("ListTasks with refreshed token: %v", err)
	}
}

func TestSignOutForgetsToken(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)
	ctx := context.Background()

	ident, err := c.SignUp(ctx, "ada@example.com", "secret1", service.Metadata{})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := c.SignOut(ctx, ident.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := c.ListTasks(ctx, ident.UserID); !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("ListTasks after sign-out: err = %v", err)
	}

	other := newClient(t, srv)
	if _, err := other.CurrentUser(ctx, ident.Token); !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("revoked token accepted: err = %v", err)
	}
}

func TestCurrentUserWithoutToken(t *testing.T) {
	srv, _ := newServer(t)
	c := newClient(t, srv)
	for _, tok := range []*oauth2.Token{nil, {}} {
		if _, err := c.CurrentUser(context.Background(), tok); !errors.Is(err, service.ErrNotAuthenticated) {
			t.Errorf("CurrentUser(%v): err = %v", tok, err)
		}
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{&googleapi.Error{Code: http.StatusUnauthorized}, service.ErrNotAuthenticated},
		{&googleapi.Error{Code: http.StatusNotFound}, service.ErrNotFound},
		{&googleapi.Error{Code: http.StatusConflict}, service.ErrEmailTaken},
		{&oauth2.RetrieveError{ErrorCode: "invalid_grant"}, service.ErrNotAuthenticated},
	}
	for _, tt := range tests {
		if got := wrapError(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("wrapError(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := wrapError(context.DeadlineExceeded); got == nil || got.Error() != "request timed out" {
		t.Errorf("timeout = %v", got)
	}
	if wrapError(nil) != nil {
		t.Error("wrapError(nil) != nil")
	}
	got := wrapError(&googleapi.Error{Code: 500, Message: "boom"})
	if got == nil || got.Error() != "server error 500: boom" {
		t.Errorf("500 = %v", got)
	}
}
