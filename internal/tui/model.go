// Package tui is the interactive dashboard: the task list with its filters,
// the profile card and the task form, driven by one bubbletea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskpro/internal/app"
	"taskpro/internal/output"
	"taskpro/internal/service"
	"taskpro/internal/tasks"
	"taskpro/internal/validate"
)

const (
	profileWidth = 32
	minListWidth = 40
)

// Model is the root Bubble Tea model
type Model struct {
	ctx  context.Context
	app  *app.App
	keys KeyMap
	help help.Model

	// Terminal dimensions
	width  int
	height int

	// List pane
	filter    tasks.Filter
	search    textinput.Model
	searching bool
	cursor    int

	// Form overlay
	form     formModel
	formOpen bool

	// mutating is set while a toggle or delete from the list is in flight.
	mutating bool

	// Notification line
	notice    string
	noticeErr bool
}

// New builds the dashboard over a signed-in app.
func New(ctx context.Context, a *app.App) Model {
	search := textinput.New()
	search.Placeholder = "Search title or description"
	search.Prompt = "/ "
	search.PromptStyle = InputPromptStyle
	search.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:    ctx,
		app:    a,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		search: search,
	}
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(New(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))

	values, unsubscribe := a.Refresh.Subscribe()
	defer unsubscribe()
	done := make(chan struct{})
	defer close(done)
	go forwardCounter(values, done, p.Send)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init loads both panes.
func (m Model) Init() tea.Cmd {
	return m.sync(m.app.Refresh.Value())
}

// sync hands counter value v to both panes and fetches for each one that
// has not seen it yet.
func (m Model) sync(v uint64) tea.Cmd {
	var cmds []tea.Cmd
	if m.app.List.Observe(v) {
		cmds = append(cmds, fetchTasksCmd(m.ctx, m.app))
	}
	if m.app.Profile.Observe(v) {
		cmds = append(cmds, fetchProfileCmd(m.ctx, m.app))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tasksLoadedMsg:
		if !m.app.List.Apply(msg.ticket, msg.tasks, msg.err) {
			return m, nil
		}
		if msg.err != nil {
			m.setNotice(msg.err.Error(), true)
		}
		m.clampCursor()

	case profileLoadedMsg:
		if m.app.Profile.Apply(msg.ticket, msg.card, msg.err) && msg.err != nil {
			m.setNotice(msg.err.Error(), true)
		}

	case mutationDoneMsg:
		return m.mutationDone(msg)

	case counterChangedMsg:
		return m, m.sync(uint64(msg))

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.formOpen:
			return m.updateForm(msg)
		case m.searching:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) mutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case mutationCreate, mutationUpdate:
		m.form.submitting = false
	case mutationToggle, mutationDelete:
		m.mutating = false
	}
	if msg.err != nil {
		var fe *validate.FieldError
		if errors.As(msg.err, &fe) && m.formOpen {
			m.form.setError(fe)
			return m, nil
		}
		m.setNotice(failureText(msg.kind, msg.err), true)
		return m, nil
	}

	switch msg.kind {
	case mutationCreate:
		m.formOpen = false
		m.setNotice(output.MsgTaskCreated, false)
	case mutationUpdate:
		m.formOpen = false
		m.setNotice(output.MsgTaskUpdated, false)
	case mutationToggle:
		m.setNotice(output.MsgTaskUpdated, false)
	case mutationDelete:
		m.setNotice(output.MsgTaskDeleted, false)
	}
	// The app already bumped the counter; both panes pick the new value up.
	return m, m.sync(m.app.Refresh.Value())
}

func failureText(kind mutation, err error) string {
	if errors.Is(err, service.ErrNotAuthenticated) {
		return "Not logged in (run: taskpro login)"
	}
	if kind == mutationDelete {
		return "Failed to delete task: " + err.Error()
	}
	return output.MsgSaveFailed + ": " + err.Error()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.formOpen = false
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.form.submitting {
			return m, nil
		}
		in := m.form.input()
		if err := in.Validate(); err != nil {
			var fe *validate.FieldError
			if errors.As(err, &fe) {
				m.form.setError(fe)
				return m, nil
			}
		}
		m.form.submitting = true
		m.form.fieldErr = ""
		return m, saveTaskCmd(m.ctx, m.app, m.form.taskID, in)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.filter.Query = ""
		fallthrough
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.cursor = 0
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Status):
		m.filter.Status = cycleFilter(service.Statuses, m.filter.Status)
		m.cursor = 0
	case key.Matches(msg, m.keys.Priority):
		m.filter.Priority = cycleFilter(service.Priorities, m.filter.Priority)
		m.cursor = 0
	case key.Matches(msg, m.keys.Clear):
		m.filter = tasks.Filter{}
		m.search.SetValue("")
		m.cursor = 0
	case key.Matches(msg, m.keys.New):
		m.form = newForm(m.keys)
		m.formOpen = true
	case key.Matches(msg, m.keys.Edit):
		if t, ok := m.selected(); ok {
			m.form = editForm(m.keys, t)
			m.formOpen = true
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok && !m.mutating {
			in := tasks.InputFrom(t)
			in.Status = service.StatusCompleted
			if t.Status == service.StatusCompleted {
				in.Status = service.StatusPending
			}
			m.mutating = true
			return m, toggleTaskCmd(m.ctx, m.app, t.ID, in)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok && !m.mutating {
			m.mutating = true
			return m, deleteTaskCmd(m.ctx, m.app, t.ID)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.sync(m.app.Refresh.Bump())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// cycleFilter steps through "all" followed by each of values.
func cycleFilter[T comparable](values []T, cur T) T {
	var all T
	if cur == all {
		return values[0]
	}
	for i, v := range values {
		if v == cur && i+1 < len(values) {
			return values[i+1]
		}
	}
	return all
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m Model) visible() []service.Task {
	return m.app.List.Visible(m.filter)
}

func (m Model) selected() (service.Task, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return service.Task{}, false
	}
	return v[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.formOpen {
		form := m.form.view() + "\n" + m.help.View(formKeys{m.keys})
		if m.width == 0 {
			return form
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}

	listWidth := m.width - profileWidth - 4
	if listWidth < minListWidth {
		listWidth = minListWidth
	}

	header := HeaderStyle.Render("taskpro")
	if id, ok := m.app.Session.Current(); ok {
		header += DimStyle.Render("  " + id.Email)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		PaneStyle.Width(listWidth).Render(m.listView()),
		PaneStyle.Width(profileWidth).Render(m.profileView()),
	)

	var b strings.Builder
	b.WriteString(header + "\n")
	b.WriteString(body + "\n")
	if m.notice != "" {
		style := SuccessStyle
		if m.noticeErr {
			style = ErrorStyle
		}
		b.WriteString(style.Render(m.notice) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(PaneTitleStyle.Render("Tasks") + "  " + FilterStyle.Render(m.filterLine()) + "\n")
	if m.searching {
		b.WriteString(m.search.View() + "\n")
	}

	list := m.app.List
	visible := m.visible()
	switch {
	case !list.Loaded():
		if list.Err() == nil {
			b.WriteString(DimStyle.Render("Loading..."))
		}
		return b.String()
	case len(list.Tasks()) == 0:
		b.WriteString(DimStyle.Render("No tasks yet. Press n to add one."))
		return b.String()
	case len(visible) == 0:
		b.WriteString(DimStyle.Render("No tasks match the current filters."))
		return b.String()
	}

	for i, t := range visible {
		line := taskLine(t)
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func taskLine(t service.Task) string {
	line := statusStyle(t.Status).Render(output.StatusMark(t.Status)+" "+strings.ReplaceAll(t.Title, "\n", " ")) +
		" " + priorityStyle(t.Priority).Render(string(t.Priority))
	if due := t.DueText(); due != "" {
		line += DimStyle.Render("  due " + due)
	}
	return line
}

func (m Model) filterLine() string {
	label := func(s string) string {
		if s == "" {
			return "all"
		}
		return s
	}
	line := fmt.Sprintf("status: %s · priority: %s", label(string(m.filter.Status)), label(string(m.filter.Priority)))
	if q := m.filter.Query; q != "" && !m.searching {
		line = fmt.Sprintf("%q · %s", q, line)
	}
	return line
}

func (m Model) profileView() string {
	card, ok := m.app.Profile.Card()
	if !ok {
		return PaneTitleStyle.Render("Profile") + "\n" + DimStyle.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(AvatarStyle.Render(card.Initials()) + "\n")
	b.WriteString(PaneTitleStyle.Render(card.DisplayName()) + "\n")
	if email := card.Email(); email != "" {
		b.WriteString(DimStyle.Render(email) + "\n")
	}
	if card.Profile != nil && !card.Profile.CreatedAt.IsZero() {
		b.WriteString(DimStyle.Render("Member since "+card.Profile.CreatedAt.Format(output.DateLayout)) + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s total\n", StatValueStyle.Render(fmt.Sprint(card.Stats.Total)))
	fmt.Fprintf(&b, "%s completed\n", StatValueStyle.Render(fmt.Sprint(card.Stats.Completed)))
	fmt.Fprintf(&b, "%s pending", StatValueStyle.Render(fmt.Sprint(card.Stats.Pending)))
	return b.String()
}
