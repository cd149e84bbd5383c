package tasks

import (
	"strings"

	"taskpro/internal/service"
)

// Filter is a presentation-only selection over an already fetched task set.
// Zero-valued fields match everything.
type Filter struct {
	Query    string
	Status   service.Status
	Priority service.Priority
}

// Match reports whether t passes the filter. The query is a case-insensitive
// substring of the title or description.
func (f Filter) Match(t service.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.DescriptionText()), q)
}

// Apply returns the matching subsequence of tasks, preserving order.
func (f Filter) Apply(tasks []service.Task) []service.Task {
	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			result = append(result, t)
		}
	}
	return result
}
