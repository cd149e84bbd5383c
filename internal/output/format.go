// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskpro/internal/profile"
	"taskpro/internal/service"
)

// DateLayout is how dates other than due dates are shown.
const DateLayout = "Jan 2, 2006"

// Notifications shown after a form is submitted.
const (
	MsgTaskCreated    = "Task created successfully"
	MsgTaskUpdated    = "Task updated successfully"
	MsgTaskDeleted    = "Task deleted"
	MsgAccountCreated = "Account created successfully!"
	MsgSaveFailed     = "Failed to save task"
	MsgSignUpFailed   = "Failed to create account"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {MARK} {PRIORITY:<6} {TITLE}[  (due YYYY-MM-DD)]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	line := fmt.Sprintf("%4d  %s %-6s %s", num, StatusMark(task.Status), task.Priority, normalizeTitle(task.Title))
	if due := task.DueText(); due != "" {
		line += "  (due " + due + ")"
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if d := task.DescriptionText(); d != "" {
		fmt.Fprintf(w, "description: %s\n", normalizeTitle(d))
	}
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	fmt.Fprintf(w, "priority:    %s\n", task.Priority)
	if due := task.DueText(); due != "" {
		fmt.Fprintf(w, "due:         %s\n", due)
	}
	fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.Format(DateLayout))
}

// FormatProfile prints a profile card.
func FormatProfile(w io.Writer, card profile.Card) {
	fmt.Fprintf(w, "[%s] %s\n", card.Initials(), card.DisplayName())
	if email := card.Email(); email != "" {
		fmt.Fprintf(w, "     %s\n", email)
	}
	if card.Profile != nil && !card.Profile.CreatedAt.IsZero() {
		fmt.Fprintf(w, "     member since %s\n", card.Profile.CreatedAt.Format(DateLayout))
	}
	fmt.Fprintf(w, "Tasks: %d total, %d completed, %d pending\n",
		card.Stats.Total, card.Stats.Completed, card.Stats.Pending)
}

// StatusMark returns the checkbox shown for a status.
func StatusMark(s service.Status) string {
	switch s {
	case service.StatusCompleted:
		return "[x]"
	case service.StatusInProgress:
		return "[~]"
	}
	return "[ ]"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
