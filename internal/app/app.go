// Package app wires the client core for one process: the session, the task
// gateway, the list coordinator, the profile aggregator and the refresh
// counter that ties them together.
package app

import (
	"context"
	"io"
	"log/slog"

	"taskpro/internal/logging"
	"taskpro/internal/profile"
	"taskpro/internal/refresh"
	"taskpro/internal/service"
	"taskpro/internal/session"
	"taskpro/internal/tasks"
	"taskpro/internal/validate"
)

// App is the client core.
type App struct {
	Store   service.Service
	Session *session.Manager
	Gateway *tasks.Gateway
	List    *tasks.Coordinator
	Profile *profile.Aggregator
	Refresh *refresh.Counter
	Logger  *slog.Logger

	unsubscribe func()
}

// New builds an App over store. tokens persists the session and may be nil.
func New(store service.Service, tokens session.TokenStore, logger *slog.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	sess := session.NewManager(store, tokens, logger)
	a := &App{
		Store:   store,
		Session: sess,
		Gateway: tasks.NewGateway(store, sess, logger),
		List:    tasks.NewCoordinator(store, sess, logger),
		Profile: profile.NewAggregator(store, sess, logger),
		Refresh: refresh.NewCounter(),
		Logger:  logger,
	}
	// An identity change invalidates everything derived from the old one.
	a.unsubscribe = sess.Subscribe(func(session.Event) {
		a.List.Reset()
		a.Profile.Reset()
		a.Refresh.Bump()
	})
	return a
}

// Start restores a persisted session.
func (a *App) Start(ctx context.Context) error {
	return a.Session.Init(ctx)
}

// CreateTask submits a new task and, on success, signals dependent views.
func (a *App) CreateTask(ctx context.Context, in validate.TaskInput) (service.Task, error) {
	t, err := a.Gateway.Create(ctx, in)
	if err != nil {
		return service.Task{}, err
	}
	a.Refresh.Bump()
	return t, nil
}

// UpdateTask submits an edit and, on success, signals dependent views.
func (a *App) UpdateTask(ctx context.Context, id string, in validate.TaskInput) error {
	if err := a.Gateway.Update(ctx, id, in); err != nil {
		return err
	}
	a.Refresh.Bump()
	return nil
}

// DeleteTask removes a task and, on success, signals dependent views.
func (a *App) DeleteTask(ctx context.Context, id string) error {
	if err := a.Gateway.Delete(ctx, id); err != nil {
		return err
	}
	a.Refresh.Bump()
	return nil
}

// Sync brings the list and profile up to the current counter value.
// Both are attempted; the first error is returned.
func (a *App) Sync(ctx context.Context) error {
	v := a.Refresh.Value()
	listErr := a.List.Sync(ctx, v)
	profErr := a.Profile.Sync(ctx, v)
	if listErr != nil {
		return listErr
	}
	return profErr
}

// Close tears down the views; in-flight results are dropped afterwards.
// A store holding resources is closed too.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.List.Close()
	a.Profile.Close()
	if c, ok := a.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.Logger.Warn("failed to close store", "error", err)
		}
	}
}
