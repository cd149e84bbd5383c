package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpro/internal/service"
	"taskpro/internal/tasks"
	"taskpro/internal/validate"
)

// formField indexes the focusable rows of the task form.
type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldDue
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Status", "Priority", "Due date"}

// formModel is the create/edit overlay. Text fields are inputs; status and
// priority cycle through their allowed values.
type formModel struct {
	keys KeyMap

	title       textinput.Model
	description textinput.Model
	due         textinput.Model
	status      service.Status
	priority    service.Priority

	focus formField

	// taskID is empty when creating.
	taskID string

	// submitting is set from submit until the result arrives.
	submitting bool
	// fieldErr is the first validation message of the last attempt.
	fieldErr string
	field    string
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = limit
	ti.Width = 48
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// newForm opens an empty form with the default status and priority.
func newForm(keys KeyMap) formModel {
	f := formModel{
		keys:        keys,
		title:       newInput("What needs doing?", validate.MaxTitleLen+1),
		description: newInput("Optional", validate.MaxDescriptionLen+1),
		due:         newInput("YYYY-MM-DD", len("2006-01-02")),
		status:      service.StatusPending,
		priority:    service.PriorityMedium,
	}
	f.focusField(fieldTitle)
	return f
}

// editForm opens the form pre-filled from t.
func editForm(keys KeyMap, t service.Task) formModel {
	f := newForm(keys)
	in := tasks.InputFrom(t)
	f.taskID = t.ID
	f.title.SetValue(in.Title)
	f.description.SetValue(in.Description)
	f.due.SetValue(in.DueDate)
	f.status = in.Status
	f.priority = in.Priority
	return f
}

func (f formModel) editing() bool { return f.taskID != "" }

// input collects the current values.
func (f formModel) input() validate.TaskInput {
	return validate.TaskInput{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Status:      f.status,
		Priority:    f.priority,
		DueDate:     strings.TrimSpace(f.due.Value()),
	}
}

func (f *formModel) focusField(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	f.title.Blur()
	f.description.Blur()
	f.due.Blur()
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldDue:
		f.due.Focus()
	}
}

// setError records a validation failure and moves focus to its field.
func (f *formModel) setError(fe *validate.FieldError) {
	f.fieldErr = fe.Message
	f.field = fe.Field
	switch fe.Field {
	case "title":
		f.focusField(fieldTitle)
	case "description":
		f.focusField(fieldDescription)
	case "due_date":
		f.focusField(fieldDue)
	}
}

// update handles keys other than submit and escape, which the root owns.
func (f formModel) update(msg tea.KeyMsg) (formModel, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Next):
		f.focusField(f.focus + 1)
		return f, nil
	case key.Matches(msg, f.keys.Prev):
		f.focusField(f.focus - 1)
		return f, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	case fieldStatus:
		if key.Matches(msg, f.keys.Cycle) {
			f.status = cycle(service.Statuses, f.status, msg.String() == "left")
		}
	case fieldPriority:
		if key.Matches(msg, f.keys.Cycle) {
			f.priority = cycle(service.Priorities, f.priority, msg.String() == "left")
		}
	}
	return f, cmd
}

// cycle returns the value after cur in values, wrapping around.
func cycle[T comparable](values []T, cur T, back bool) T {
	i := 0
	for j, v := range values {
		if v == cur {
			i = j
			break
		}
	}
	if back {
		return values[(i+len(values)-1)%len(values)]
	}
	return values[(i+1)%len(values)]
}

func (f formModel) view() string {
	var b strings.Builder
	heading := "New task"
	if f.editing() {
		heading = "Edit task"
	}
	b.WriteString(PaneTitleStyle.Render(heading))
	b.WriteString("\n\n")

	for field := formField(0); field < fieldCount; field++ {
		label := LabelStyle
		if field == f.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[field]))
		switch field {
		case fieldTitle:
			b.WriteString(f.title.View())
		case fieldDescription:
			b.WriteString(f.description.View())
		case fieldStatus:
			b.WriteString(choiceView(service.Statuses, f.status))
		case fieldPriority:
			b.WriteString(choiceView(service.Priorities, f.priority))
		case fieldDue:
			b.WriteString(f.due.View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(DimStyle.Render("Saving..."))
	case f.fieldErr != "":
		b.WriteString(ErrorStyle.Render(f.fieldErr))
	}
	return FormStyle.Render(b.String())
}

func choiceView[T ~string](values []T, cur T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v == cur {
			parts[i] = SelectedStyle.Render("[" + string(v) + "]")
		} else {
			parts[i] = DimStyle.Render(" " + string(v) + " ")
		}
	}
	return strings.Join(parts, " ")
}
