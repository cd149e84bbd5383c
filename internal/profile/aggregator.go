package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskpro/internal/logging"
	"taskpro/internal/refresh"
	"taskpro/internal/service"
)

// DefaultDisplayName is shown when the profile has no full name.
const DefaultDisplayName = "User"

// Identifier yields the live identity. *session.Manager satisfies it.
type Identifier interface {
	Current() (service.Identity, bool)
}

// Store is the part of the remote store the aggregator reads.
type Store interface {
	service.TaskStore
	service.ProfileStore
}

// Card is everything the profile view shows.
type Card struct {
	Identity service.Identity
	// Profile is nil when the record is not populated yet.
	Profile *service.Profile
	Stats   Stats
}

// DisplayName returns the profile's full name or DefaultDisplayName.
func (c Card) DisplayName() string {
	if c.Profile != nil && c.Profile.FullName != "" {
		return c.Profile.FullName
	}
	return DefaultDisplayName
}

// Email prefers the profile email and falls back to the identity's.
func (c Card) Email() string {
	if c.Profile != nil && c.Profile.Email != "" {
		return c.Profile.Email
	}
	return c.Identity.Email
}

// Initials returns the avatar initials for the card.
func (c Card) Initials() string {
	name := ""
	if c.Profile != nil {
		name = c.Profile.FullName
	}
	return Initials(name, c.Identity.Email)
}

// Aggregator loads the profile card for the current identity. Statistics
// come from the owner's full, unfiltered task set, fetched independently of
// any list view so that presentation filters never skew them.
type Aggregator struct {
	store  Store
	ident  Identifier
	logger *slog.Logger
	snap   refresh.Snapshot[Card]
}

// NewAggregator creates an aggregator reading from store for ident.
func NewAggregator(store Store, ident Identifier, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Aggregator{store: store, ident: ident, logger: logger}
}

// Load fetches the profile and task set and derives a card. It does not
// touch the held card. A missing profile is not an error.
func (a *Aggregator) Load(ctx context.Context) (Card, error) {
	id, ok := a.ident.Current()
	if !ok {
		return Card{}, service.ErrNotAuthenticated
	}
	card := Card{Identity: id}

	p, err := a.store.GetProfile(ctx, id.UserID)
	switch {
	case err == nil:
		card.Profile = &p
	case errors.Is(err, service.ErrNotFound):
		a.logger.Debug("profile not populated yet", "user_id", id.UserID)
	default:
		return Card{}, fmt.Errorf("failed to load profile: %w", err)
	}

	tasks, err := a.store.ListTasks(ctx, id.UserID)
	if err != nil {
		return Card{}, fmt.Errorf("failed to load task stats: %w", err)
	}
	card.Stats = ComputeStats(tasks)
	return card, nil
}

// Begin issues a ticket for a load about to start.
func (a *Aggregator) Begin() refresh.Ticket {
	return a.snap.Begin()
}

// Apply stores the load tagged t unless it was superseded.
func (a *Aggregator) Apply(t refresh.Ticket, c Card, err error) bool {
	applied := a.snap.Apply(t, c, err)
	if applied && err != nil {
		a.logger.Warn("profile load failed, keeping previous card", "error", err)
	}
	return applied
}

// Refresh loads synchronously and applies the result.
func (a *Aggregator) Refresh(ctx context.Context) error {
	t := a.Begin()
	c, err := a.Load(ctx)
	if a.Apply(t, c, err) {
		return err
	}
	return nil
}

// Observe records a refresh counter value and reports whether a reload is due.
func (a *Aggregator) Observe(v uint64) bool {
	return a.snap.Observe(v)
}

// Sync reloads if v is a counter value not seen before.
func (a *Aggregator) Sync(ctx context.Context, v uint64) error {
	if !a.Observe(v) {
		return nil
	}
	return a.Refresh(ctx)
}

// Card returns the last loaded card.
func (a *Aggregator) Card() (Card, bool) {
	return a.snap.Get()
}

// Err returns the error of the latest applied load.
func (a *Aggregator) Err() error {
	return a.snap.Err()
}

// Reset drops the held card.
func (a *Aggregator) Reset() {
	a.snap.Reset()
}

// Close tears the aggregator down; in-flight results are ignored.
func (a *Aggregator) Close() {
	a.snap.Close()
}
