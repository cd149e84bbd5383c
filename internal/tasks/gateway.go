// Package tasks implements owner-scoped task mutation and querying.
package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"taskpro/internal/logging"
	"taskpro/internal/service"
	"taskpro/internal/validate"
)

// Owner yields the owner key of the live session.
// *session.Manager satisfies it.
type Owner interface {
	UserID() (string, error)
}

// MutationError wraps a store failure on write. The form that produced the
// write can be resubmitted as is.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string { return e.Err.Error() }

func (e *MutationError) Unwrap() error { return e.Err }

// Gateway validates task forms and submits them to the store on behalf of
// the current owner. Each call performs at most one write and never retries.
// Notifying dependent views is left to the caller.
type Gateway struct {
	store  service.TaskStore
	owner  Owner
	logger *slog.Logger
}

// NewGateway creates a gateway writing to store as owner.
func NewGateway(store service.TaskStore, owner Owner, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Gateway{store: store, owner: owner, logger: logger}
}

// Create validates in and inserts it as a new task of the current owner.
func (g *Gateway) Create(ctx context.Context, in validate.TaskInput) (service.Task, error) {
	row, err := g.prepare(in)
	if err != nil {
		return service.Task{}, err
	}

	task, err := g.store.InsertTask(ctx, row)
	if err != nil {
		return service.Task{}, &MutationError{Op: "create", Err: err}
	}
	g.logger.Debug("task created", "task_id", task.ID, "user_id", row.UserID)
	return task, nil
}

// Update validates in and overwrites task id. The write is constrained to
// rows matching both id and the current owner; zero affected rows yields
// service.ErrTaskNotFound.
func (g *Gateway) Update(ctx context.Context, id string, in validate.TaskInput) error {
	row, err := g.prepare(in)
	if err != nil {
		return err
	}

	n, err := g.store.UpdateTask(ctx, id, row)
	if err != nil {
		return &MutationError{Op: "update", Err: err}
	}
	if n == 0 {
		g.logger.Warn("update matched no task", "task_id", id, "user_id", row.UserID)
		return service.ErrTaskNotFound
	}
	g.logger.Debug("task updated", "task_id", id, "user_id", row.UserID)
	return nil
}

// Delete removes task id of the current owner under the same constraint as Update.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	owner, err := g.owner.UserID()
	if err != nil {
		return err
	}

	n, err := g.store.DeleteTask(ctx, id, owner)
	if err != nil {
		return &MutationError{Op: "delete", Err: err}
	}
	if n == 0 {
		return service.ErrTaskNotFound
	}
	g.logger.Debug("task deleted", "task_id", id, "user_id", owner)
	return nil
}

// prepare runs validation and builds the row for the live owner.
// This is the only place where empty optional input becomes absent.
func (g *Gateway) prepare(in validate.TaskInput) (service.TaskRow, error) {
	if err := in.Validate(); err != nil {
		return service.TaskRow{}, err
	}
	owner, err := g.owner.UserID()
	if err != nil {
		return service.TaskRow{}, err
	}

	row := service.TaskRow{
		Title:    in.Title,
		Status:   in.Status,
		Priority: in.Priority,
		UserID:   owner,
	}
	if in.Description != "" {
		desc := in.Description
		row.Description = &desc
	}
	if in.DueDate != "" {
		d, err := validate.ParseDate(in.DueDate)
		if err != nil {
			return service.TaskRow{}, fmt.Errorf("due date: %w", err)
		}
		row.DueDate = &d
	}
	return row, nil
}

// InputFrom pre-populates a form from an existing task, as an edit form does.
func InputFrom(t service.Task) validate.TaskInput {
	return validate.TaskInput{
		Title:       t.Title,
		Description: t.DescriptionText(),
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueText(),
	}
}
