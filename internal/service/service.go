package service

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// Errors shared by every backend.
var (
	// ErrNotAuthenticated means there is no live session or the token was rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials is returned by SignIn without saying which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned by SignUp for a duplicate account.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrTaskNotFound means an owner-scoped write matched zero rows.
	// Unknown ids and ids owned by someone else are reported the same way.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotFound is returned for missing records such as an unpopulated profile.
	ErrNotFound = errors.New("not found")
)

// Auth is the authentication collaborator.
type Auth interface {
	// SignUp creates an identity and its profile and returns a live session.
	SignUp(ctx context.Context, email, password string, meta Metadata) (Identity, error)

	// SignIn checks credentials and returns a live session.
	SignIn(ctx context.Context, email, password string) (Identity, error)

	// SignOut revokes the session token.
	SignOut(ctx context.Context, token *oauth2.Token) error

	// CurrentUser resolves a stored token to its identity.
	// The returned identity may carry a refreshed token.
	CurrentUser(ctx context.Context, token *oauth2.Token) (Identity, error)
}

// TaskStore is the task table. Every call is scoped by owner.
type TaskStore interface {
	// ListTasks returns all tasks of owner, newest first.
	ListTasks(ctx context.Context, ownerID string) ([]Task, error)

	// InsertTask stores a new row and returns it with generated id and timestamp.
	InsertTask(ctx context.Context, row TaskRow) (Task, error)

	// UpdateTask overwrites the row matching both id and row.UserID.
	// Returns the number of affected rows.
	UpdateTask(ctx context.Context, id string, row TaskRow) (int64, error)

	// DeleteTask removes the row matching both id and ownerID.
	// Returns the number of affected rows.
	DeleteTask(ctx context.Context, id, ownerID string) (int64, error)
}

// ProfileStore is the profile table.
type ProfileStore interface {
	// GetProfile returns ErrNotFound when the profile is not populated yet.
	GetProfile(ctx context.Context, userID string) (Profile, error)
}

// Service is the full remote store consumed by the client core.
// Commands never talk to a database or HTTP API directly.
type Service interface {
	Auth
	TaskStore
	ProfileStore
}
