package output

import (
	"bytes"
	"testing"
	"time"

	"taskpro/internal/profile"
	"taskpro/internal/service"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task service.Task
		want string
	}{
		{
			name: "pending",
			num:  1,
			task: service.Task{Title: "Buy milk", Status: service.StatusPending, Priority: service.PriorityHigh},
			want: "   1  [ ] high   Buy milk\n",
		},
		{
			name: "completed with due date",
			num:  12,
			task: service.Task{Title: "Taxes", Status: service.StatusCompleted, Priority: service.PriorityLow, DueDate: datePtr(2026, time.April, 15)},
			want: "  12  [x] low    Taxes  (due 2026-04-15)\n",
		},
		{
			name: "in progress multiline title",
			num:  3,
			task: service.Task{Title: "Write\nreport", Status: service.StatusInProgress, Priority: service.PriorityMedium},
			want: "   3  [~] medium Write report\n",
		},
		{
			name: "blank title",
			num:  4,
			task: service.Task{Title: "  ", Status: service.StatusPending, Priority: service.PriorityLow},
			want: "   4  [ ] low    (untitled)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.num, tt.task)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatTaskDetail_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskDetail(&buf, service.Task{
		ID:        "task-1",
		Title:     "Buy milk",
		Status:    service.StatusPending,
		Priority:  service.PriorityMedium,
		CreatedAt: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
	})
	want := "id:          task-1\n" +
		"title:       Buy milk\n" +
		"status:      pending\n" +
		"priority:    medium\n" +
		"created:     Mar 9, 2026\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestFormatProfile(t *testing.T) {
	var buf bytes.Buffer
	FormatProfile(&buf, profile.Card{
		Identity: service.Identity{UserID: "u1", Email: "grace@example.com"},
		Profile: &service.Profile{
			ID:        "u1",
			FullName:  "grace brewster hopper",
			Email:     "grace@example.com",
			CreatedAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		},
		Stats: profile.Stats{Total: 3, Completed: 1, Pending: 1},
	})
	want := "[GB] grace brewster hopper\n" +
		"     grace@example.com\n" +
		"     member since Dec 1, 2025\n" +
		"Tasks: 3 total, 1 completed, 1 pending\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestStatusMark(t *testing.T) {
	if got := StatusMark(service.Status("bogus")); got != "[ ]" {
		t.Errorf("unknown status mark = %q", got)
	}
}
