package tasks

import (
	"context"
	"log/slog"

	"taskpro/internal/logging"
	"taskpro/internal/refresh"
	"taskpro/internal/service"
)

// FetchError wraps a store failure on read. The previously fetched list is
// kept when it occurs.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "failed to load tasks: " + e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }

// Coordinator keeps the current owner's task list fresh. It re-fetches the
// whole list whenever it observes a new refresh counter value and drops
// responses to superseded requests.
type Coordinator struct {
	store  service.TaskStore
	owner  Owner
	logger *slog.Logger
	snap   refresh.Snapshot[[]service.Task]
}

// NewCoordinator creates a coordinator reading from store as owner.
func NewCoordinator(store service.TaskStore, owner Owner, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{store: store, owner: owner, logger: logger}
}

// ListTasks fetches every task of the current owner in store order.
// It does not touch the held list.
func (c *Coordinator) ListTasks(ctx context.Context) ([]service.Task, error) {
	owner, err := c.owner.UserID()
	if err != nil {
		return nil, err
	}
	tasks, err := c.store.ListTasks(ctx, owner)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	return tasks, nil
}

// Begin issues a ticket for a fetch about to start.
func (c *Coordinator) Begin() refresh.Ticket {
	return c.snap.Begin()
}

// Apply stores the result of the fetch tagged t. Results of superseded
// fetches, or arriving after Close, are dropped. Returns whether it applied.
func (c *Coordinator) Apply(t refresh.Ticket, tasks []service.Task, err error) bool {
	applied := c.snap.Apply(t, tasks, err)
	if !applied {
		c.logger.Debug("dropped stale task list", "ticket", uint64(t))
	} else if err != nil {
		c.logger.Warn("task fetch failed, keeping previous list", "error", err)
	}
	return applied
}

// Refresh fetches synchronously and applies the result.
// The returned error is the fetch error when it applied.
func (c *Coordinator) Refresh(ctx context.Context) error {
	t := c.Begin()
	tasks, err := c.ListTasks(ctx)
	if c.Apply(t, tasks, err) {
		return err
	}
	return nil
}

// Observe records a refresh counter value and reports whether a re-fetch is due.
func (c *Coordinator) Observe(v uint64) bool {
	return c.snap.Observe(v)
}

// Sync re-fetches if v is a counter value not seen before.
func (c *Coordinator) Sync(ctx context.Context, v uint64) error {
	if !c.Observe(v) {
		return nil
	}
	return c.Refresh(ctx)
}

// Tasks returns the last fetched list.
func (c *Coordinator) Tasks() []service.Task {
	tasks, _ := c.snap.Get()
	return tasks
}

// Loaded reports whether a fetch has ever succeeded.
func (c *Coordinator) Loaded() bool {
	_, ok := c.snap.Get()
	return ok
}

// Err returns the error of the latest applied fetch.
func (c *Coordinator) Err() error {
	return c.snap.Err()
}

// Visible returns the held list narrowed by f. No store call is made.
func (c *Coordinator) Visible(f Filter) []service.Task {
	return f.Apply(c.Tasks())
}

// Reset drops the held list, for example after the identity changed.
func (c *Coordinator) Reset() {
	c.snap.Reset()
}

// Close tears the coordinator down; in-flight results are ignored.
func (c *Coordinator) Close() {
	c.snap.Close()
}
