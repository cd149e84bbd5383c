package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskpro/internal/app"
	"taskpro/internal/profile"
	"taskpro/internal/refresh"
	"taskpro/internal/service"
	"taskpro/internal/validate"
)

// Messages
type tasksLoadedMsg struct {
	ticket refresh.Ticket
	tasks  []service.Task
	err    error
}

type profileLoadedMsg struct {
	ticket refresh.Ticket
	card   profile.Card
	err    error
}

// counterChangedMsg carries a refresh counter value announced by the app.
type counterChangedMsg uint64

// forwardCounter relays counter values to send until done is closed.
func forwardCounter(values <-chan uint64, done <-chan struct{}, send func(tea.Msg)) {
	for {
		select {
		case v := <-values:
			send(counterChangedMsg(v))
		case <-done:
			return
		}
	}
}

// mutation says which write a mutationDoneMsg reports on.
type mutation int

const (
	mutationCreate mutation = iota
	mutationUpdate
	mutationToggle
	mutationDelete
)

// mutationDoneMsg reports the outcome of a create, update or delete.
type mutationDoneMsg struct {
	kind mutation
	err  error
}

// fetchTasksCmd issues a list ticket now and fetches in the background.
func fetchTasksCmd(ctx context.Context, a *app.App) tea.Cmd {
	ticket := a.List.Begin()
	return func() tea.Msg {
		tasks, err := a.List.ListTasks(ctx)
		return tasksLoadedMsg{ticket: ticket, tasks: tasks, err: err}
	}
}

// fetchProfileCmd issues a profile ticket now and loads in the background.
func fetchProfileCmd(ctx context.Context, a *app.App) tea.Cmd {
	ticket := a.Profile.Begin()
	return func() tea.Msg {
		card, err := a.Profile.Load(ctx)
		return profileLoadedMsg{ticket: ticket, card: card, err: err}
	}
}

func saveTaskCmd(ctx context.Context, a *app.App, id string, in validate.TaskInput) tea.Cmd {
	return func() tea.Msg {
		if id == "" {
			_, err := a.CreateTask(ctx, in)
			return mutationDoneMsg{kind: mutationCreate, err: err}
		}
		return mutationDoneMsg{kind: mutationUpdate, err: a.UpdateTask(ctx, id, in)}
	}
}

func toggleTaskCmd(ctx context.Context, a *app.App, id string, in validate.TaskInput) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{kind: mutationToggle, err: a.UpdateTask(ctx, id, in)}
	}
}

func deleteTaskCmd(ctx context.Context, a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		return mutationDoneMsg{kind: mutationDelete, err: a.DeleteTask(ctx, id)}
	}
}
