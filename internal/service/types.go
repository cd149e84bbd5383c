// Package service defines the remote-store contract consumed by the client core.
package service

import (
	"time"

	"golang.org/x/oauth2"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// Status is the workflow state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a row of the task table.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DescriptionText returns the description or "" when absent.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// DueText returns the due date as YYYY-MM-DD or "" when absent.
func (t Task) DueText() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// TaskRow is the write payload for inserts and updates.
// Optional columns are nil when absent; an empty string never reaches the store.
type TaskRow struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	UserID      string     `json:"user_id"`
}

// Profile is the 1:1 projection of an identity.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is an authenticated user together with its session token.
type Identity struct {
	UserID string        `json:"user_id"`
	Email  string        `json:"email"`
	Token  *oauth2.Token `json:"token"`
}

// Metadata is attached to an identity at sign-up and seeds its profile.
type Metadata struct {
	FullName string `json:"full_name"`
}
