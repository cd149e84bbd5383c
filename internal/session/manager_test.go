package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"

	"taskpro/internal/service"
	"taskpro/internal/session"
	"taskpro/internal/testutil"
)

func TestManager_SignUpPopulatesSession(t *testing.T) {
	svc := testutil.NewFakeService()
	tokens := &testutil.MemTokens{}
	m := session.NewManager(svc, tokens, nil)

	var events []session.Event
	m.Subscribe(func(ev session.Event) { events = append(events, ev) })

	if err := m.SignUp(context.Background(), "ada@example.com", "secret1", "Ada Lovelace"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, ok := m.Current()
	if !ok || id.Email != "ada@example.com" {
		t.Fatalf("expected session for ada, got %+v (ok=%v)", id, ok)
	}
	if _, ok := tokens.Stored(); !ok {
		t.Error("expected session to be persisted")
	}
	if len(events) != 1 || !events[0].SignedIn {
		t.Errorf("expected one sign-in event, got %+v", events)
	}

	p, err := svc.GetProfile(context.Background(), id.UserID)
	if err != nil || p.FullName != "Ada Lovelace" {
		t.Errorf("expected profile to be created, got %+v, %v", p, err)
	}
}

func TestManager_SignUpDuplicate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("ada@example.com", "secret1", "Ada")
	m := session.NewManager(svc, nil, nil)

	err := m.SignUp(context.Background(), "ada@example.com", "secret1", "Ada")
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, ok := m.Current(); ok {
		t.Error("session must stay unset after a failed sign-up")
	}
}

func TestManager_SignInWrongPassword(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("ada@example.com", "secret1", "Ada")
	m := session.NewManager(svc, nil, nil)

	err := m.SignIn(context.Background(), "ada@example.com", "nope")
	if err != service.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	err = m.SignIn(context.Background(), "nobody@example.com", "secret1")
	if err != service.ErrInvalidCredentials {
		t.Fatalf("unknown email should produce the same error, got %v", err)
	}
	if _, err := m.UserID(); !errors.Is(err, service.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestManager_SignOutClearsEvenWhenRemoteFails(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("ada@example.com", "secret1", "Ada")
	tokens := &testutil.MemTokens{}
	m := session.NewManager(svc, tokens, nil)

	if err := m.SignIn(context.Background(), "ada@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	var last session.Event
	m.Subscribe(func(ev session.Event) { last = ev })

	svc.SignOutErr = errors.New("network down")
	err := m.SignOut(context.Background())
	if err == nil {
		t.Error("expected the remote failure to be reported")
	}
	if _, ok := m.Current(); ok {
		t.Error("session must be cleared even when revocation fails")
	}
	if _, ok := tokens.Stored(); ok {
		t.Error("persisted session must be cleared")
	}
	if last.SignedIn {
		t.Error("expected a sign-out event")
	}
}

func TestManager_InitRestoresValidToken(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddUser("ada@example.com", "secret1", "Ada")
	tokens := &testutil.MemTokens{}
	if err := tokens.Save(id); err != nil {
		t.Fatal(err)
	}

	m := session.NewManager(svc, tokens, nil)
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	got, ok := m.Current()
	if !ok || got.UserID != id.UserID {
		t.Errorf("expected restored session for %s, got %+v", id.UserID, got)
	}
}

func TestManager_InitDiscardsExpiredToken(t *testing.T) {
	svc := testutil.NewFakeService()
	tokens := &testutil.MemTokens{}
	_ = tokens.Save(service.Identity{UserID: "user-9", Token: &oauth2.Token{AccessToken: "revoked"}})

	m := session.NewManager(svc, tokens, nil)
	if err := m.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, ok := m.Current(); ok {
		t.Error("expired token must not populate the session")
	}
	if _, ok := tokens.Stored(); ok {
		t.Error("expired token must be discarded")
	}
}

func TestManager_InitKeepsTokenOnNetworkError(t *testing.T) {
	svc := testutil.NewFakeService()
	id := svc.AddUser("ada@example.com", "secret1", "Ada")
	tokens := &testutil.MemTokens{}
	_ = tokens.Save(id)
	svc.CurrentUserErr = errors.New("connection refused")

	m := session.NewManager(svc, tokens, nil)
	if err := m.Init(context.Background()); err == nil {
		t.Fatal("expected network error from Init")
	}
	if _, ok := tokens.Stored(); !ok {
		t.Error("token should survive a transient failure")
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("ada@example.com", "secret1", "Ada")
	m := session.NewManager(svc, nil, nil)

	calls := 0
	cancel := m.Subscribe(func(session.Event) { calls++ })
	cancel()
	_ = m.SignIn(context.Background(), "ada@example.com", "secret1")
	if calls != 0 {
		t.Errorf("expected no calls after unsubscribe, got %d", calls)
	}
}

func TestFileStore_RoundTripAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := session.NewFileStore(path)

	if _, err := fs.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	id := service.Identity{UserID: "u1", Email: "a@b.io", Token: &oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}}
	if err := fs.Save(id); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.UserID != "u1" || got.Token.AccessToken != "abc" {
		t.Errorf("unexpected identity %+v", got)
	}

	if err := fs.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := fs.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist after clear, got %v", err)
	}
}

func TestFileStore_RejectsTokenlessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"user_id":"u1"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := session.NewFileStore(path).Load(); err == nil {
		t.Error("expected error for a session file without a token")
	}
}
