// Package session owns the current authenticated identity.
//
// The Manager is the single source of "current user" for every other
// component. Reads go through Current/UserID; the identity only changes
// through Init, SignUp, SignIn and SignOut, and every change is announced
// to subscribers so dependent views can re-fetch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"taskpro/internal/logging"
	"taskpro/internal/service"
)

// Event describes a change of the current identity.
type Event struct {
	// Identity is the new identity; zero after sign-out.
	Identity service.Identity
	// SignedIn is false when the session was cleared.
	SignedIn bool
}

// Manager holds the process-wide session.
type Manager struct {
	auth   service.Auth
	tokens TokenStore
	logger *slog.Logger

	mu      sync.RWMutex
	current *service.Identity
	subs    map[int]func(Event)
	nextSub int
}

// NewManager creates a manager with no session. Call Init to restore a
// persisted one. tokens may be nil for a purely in-memory session.
func NewManager(auth service.Auth, tokens TokenStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		auth:   auth,
		tokens: tokens,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}
}

// Init restores a persisted session if its token is still accepted.
// A rejected or expired token is discarded; a network failure leaves the
// stored token in place and is returned.
func (m *Manager) Init(ctx context.Context) error {
	if m.tokens == nil {
		return nil
	}
	stored, err := m.tokens.Load()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		m.logger.Warn("discarding unreadable session file", "error", err)
		_ = m.tokens.Clear()
		return nil
	}

	id, err := m.auth.CurrentUser(ctx, stored.Token)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			m.logger.Debug("stored session expired", "user_id", stored.UserID)
			_ = m.tokens.Clear()
			return nil
		}
		return fmt.Errorf("restore session: %w", err)
	}
	if id.Token == nil {
		id.Token = stored.Token
	}

	m.set(&id)
	return nil
}

// SignUp creates an account and its profile, then signs in as it.
// Inputs are expected to have passed validate.Registration already.
func (m *Manager) SignUp(ctx context.Context, email, password, fullName string) error {
	id, err := m.auth.SignUp(ctx, email, password, service.Metadata{FullName: fullName})
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	m.logger.Info("account created", "user_id", id.UserID)
	m.set(&id)
	return nil
}

// SignIn replaces the session with the identity behind email/password.
// A credential failure is always service.ErrInvalidCredentials.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	id, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return service.ErrInvalidCredentials
		}
		return fmt.Errorf("sign in: %w", err)
	}
	m.logger.Info("signed in", "user_id", id.UserID)
	m.set(&id)
	return nil
}

// SignOut clears the session. Local state is cleared even when the remote
// revocation fails; that failure is still returned for reporting.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()

	var remoteErr error
	if cur != nil {
		remoteErr = m.auth.SignOut(ctx, cur.Token)
		if remoteErr != nil {
			m.logger.Warn("remote sign-out failed", "error", remoteErr)
		}
	}

	m.set(nil)
	if remoteErr != nil {
		return fmt.Errorf("sign out: %w", remoteErr)
	}
	return nil
}

// Current returns the live identity, if any.
func (m *Manager) Current() (service.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return service.Identity{}, false
	}
	return *m.current, true
}

// UserID returns the owner key of the live session or
// service.ErrNotAuthenticated.
func (m *Manager) UserID() (string, error) {
	id, ok := m.Current()
	if !ok {
		return "", service.ErrNotAuthenticated
	}
	return id.UserID, nil
}

// Subscribe registers fn to run after every identity change.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// set swaps the identity, persists it and notifies subscribers outside the lock.
func (m *Manager) set(id *service.Identity) {
	m.mu.Lock()
	m.current = id
	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	if m.tokens != nil {
		var err error
		if id == nil {
			err = m.tokens.Clear()
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		} else {
			err = m.tokens.Save(*id)
		}
		if err != nil {
			m.logger.Warn("failed to persist session", "error", err)
		}
	}

	ev := Event{}
	if id != nil {
		ev = Event{Identity: *id, SignedIn: true}
	}
	for _, fn := range subs {
		fn(ev)
	}
}
