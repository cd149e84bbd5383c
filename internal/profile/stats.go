// Package profile derives the profile card: identity details, avatar
// initials and per-status task counts.
package profile

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"taskpro/internal/service"
)

// PlaceholderInitial is shown when neither a name nor an email is known.
const PlaceholderInitial = "U"

// Stats counts tasks by status.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// ComputeStats counts tasks. In-progress tasks count toward Total only.
func ComputeStats(tasks []service.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case service.StatusCompleted:
			s.Completed++
		case service.StatusPending:
			s.Pending++
		}
	}
	return s
}

// Initials returns up to two uppercase letters for an avatar: the first
// letter of each whitespace-separated token of name, falling back to email,
// then to PlaceholderInitial.
func Initials(name, email string) string {
	src := strings.TrimSpace(name)
	if src == "" {
		src = strings.TrimSpace(email)
	}
	if src == "" {
		return PlaceholderInitial
	}

	var out []rune
	for _, tok := range strings.Fields(src) {
		r, _ := utf8.DecodeRuneInString(tok)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
