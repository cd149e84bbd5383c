package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskpro/internal/app"
	"taskpro/internal/refresh"
	"taskpro/internal/service"
	"taskpro/internal/testutil"
)

func createTestModel(t *testing.T) (Model, *testutil.FakeService, service.Identity) {
	t.Helper()
	svc := testutil.NewFakeService()
	ada := svc.AddUser("ada@example.com", "secret1", "Ada Lovelace")
	tokens := &testutil.MemTokens{}
	if err := tokens.Save(ada); err != nil {
		t.Fatal(err)
	}
	a := app.New(svc, tokens, nil)
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(a.Close)
	return New(context.Background(), a), svc, ada
}

// collect runs cmd and every batch it expands to, returning the messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// settle feeds cmd's messages back into m until nothing is left to run.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 20 {
			t.Fatal("commands did not settle")
		}
		var next []tea.Cmd
		for _, msg := range collect(cmd) {
			if _, ok := msg.(tea.QuitMsg); ok {
				continue
			}
			updated, c := m.Update(msg)
			m = updated.(Model)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		updated, cmd := m.Update(k)
		m = settle(t, updated.(Model), cmd)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySave  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

func started(t *testing.T, m Model) Model {
	t.Helper()
	return settle(t, m, m.Init())
}

func TestInitLoadsBothPanes(t *testing.T) {
	m, svc, ada := createTestModel(t)
	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	svc.AddTask(ada.UserID, "Call mom", service.StatusCompleted, service.PriorityLow)

	m = started(t, m)

	if got := len(m.app.List.Tasks()); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}
	card, ok := m.app.Profile.Card()
	if !ok {
		t.Fatal("expected profile card to be loaded")
	}
	if card.Stats.Total != 2 || card.Stats.Completed != 1 || card.Stats.Pending != 1 {
		t.Errorf("stats = %+v", card.Stats)
	}
	view := m.View()
	for _, want := range []string{"Buy milk", "Call mom", "Ada Lovelace", "AL"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStaleTaskListIsDropped(t *testing.T) {
	m, svc, ada := createTestModel(t)
	m = started(t, m)

	old := m.app.List.Begin()
	svc.AddTask(ada.UserID, "Fresh", service.StatusPending, service.PriorityLow)
	fresh := m.app.List.Begin()

	updated, _ := m.Update(tasksLoadedMsg{ticket: fresh, tasks: []service.Task{{ID: "t2", Title: "Fresh"}}})
	m = updated.(Model)
	updated, _ = m.Update(tasksLoadedMsg{ticket: old, tasks: nil})
	m = updated.(Model)

	got := m.app.List.Tasks()
	if len(got) != 1 || got[0].Title != "Fresh" {
		t.Errorf("stale response overwrote list: %+v", got)
	}
}

func TestFetchErrorKeepsListAndNotifies(t *testing.T) {
	m, svc, ada := createTestModel(t)
	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	m = started(t, m)

	svc.ListTasksErr = errors.New("connection refused")
	m = press(t, m, runes("r"))

	if len(m.app.List.Tasks()) != 1 {
		t.Error("previous list should be kept")
	}
	if !m.noticeErr || !strings.Contains(m.notice, "connection refused") {
		t.Errorf("notice = %q (err %v)", m.notice, m.noticeErr)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Error("view should still show the kept list")
	}
}

func TestCreateFromForm(t *testing.T) {
	m, svc, ada := createTestModel(t)
	m = started(t, m)
	before := m.app.Refresh.Value()

	m = press(t, m, runes("n"), runes("Buy milk"), keyTab, runes("2 litres"), keyTab, keyTab, keyRight)
	if !m.formOpen {
		t.Fatal("form should be open")
	}
	if m.form.priority != service.PriorityHigh {
		t.Errorf("priority = %s, want high", m.form.priority)
	}
	m = press(t, m, keySave)

	if m.formOpen {
		t.Errorf("form should close after save (err %q)", m.form.fieldErr)
	}
	if m.notice != "Task created successfully" || m.noticeErr {
		t.Errorf("notice = %q", m.notice)
	}
	stored := svc.AllTasks()
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored task, got %d", len(stored))
	}
	got := stored[0]
	if got.Title != "Buy milk" || got.DescriptionText() != "2 litres" || got.UserID != ada.UserID {
		t.Errorf("stored = %+v", got)
	}
	if got.Status != service.StatusPending || got.Priority != service.PriorityHigh {
		t.Errorf("stored = %+v", got)
	}
	if m.app.Refresh.Value() == before {
		t.Error("refresh counter should advance")
	}
	if len(m.app.List.Tasks()) != 1 {
		t.Error("list should re-fetch after create")
	}
	if card, _ := m.app.Profile.Card(); card.Stats.Total != 1 {
		t.Errorf("profile stats should re-fetch, got %+v", card.Stats)
	}
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	m, svc, _ := createTestModel(t)
	m = started(t, m)

	m = press(t, m, runes("n"), keySave)

	if !m.formOpen {
		t.Fatal("form should stay open")
	}
	if m.form.fieldErr != "Title is required" {
		t.Errorf("fieldErr = %q", m.form.fieldErr)
	}
	if m.form.submitting {
		t.Error("form should not be submitting")
	}
	if svc.Writes != 0 {
		t.Errorf("expected no writes, got %d", svc.Writes)
	}

	m = press(t, m, keyTab, keyTab, keyTab, keyTab, runes("soon"), keySave)
	if m.form.field != "title" {
		t.Errorf("first failing field = %q", m.form.field)
	}
}

func TestSubmitIgnoredWhileSubmitting(t *testing.T) {
	m, _, _ := createTestModel(t)
	m = started(t, m)
	m = press(t, m, runes("n"), runes("Buy milk"))

	updated, first := m.Update(keySave)
	m = updated.(Model)
	if first == nil || !m.form.submitting {
		t.Fatal("first submit should start saving")
	}
	updated, second := m.Update(keySave)
	m = updated.(Model)
	if second != nil {
		t.Error("second submit should be ignored")
	}

	m = settle(t, m, first)
	if m.form.submitting || m.formOpen {
		t.Error("form should be closed once the save lands")
	}
}

func TestSaveFailureNotifies(t *testing.T) {
	m, svc, _ := createTestModel(t)
	m = started(t, m)
	svc.InsertTaskErr = errors.New("disk full")

	m = press(t, m, runes("n"), runes("Buy milk"), keySave)

	if !m.formOpen {
		t.Error("form should stay open after a failed save")
	}
	if !m.noticeErr || m.notice != "Failed to save task: disk full" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestEditSelectedTask(t *testing.T) {
	m, svc, ada := createTestModel(t)
	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	svc.AddTask(ada.UserID, "Call mom", service.StatusPending, service.PriorityLow)
	m = started(t, m)

	// Newest first: "Call mom" then "Buy milk".
	m = press(t, m, runes("j"), runes("e"))
	if !m.formOpen || m.form.title.Value() != "Buy milk" {
		t.Fatalf("expected edit form for Buy milk, got %q", m.form.title.Value())
	}
	m = press(t, m, runes(" oat"), keySave)

	if m.notice != "Task updated successfully" {
		t.Errorf("notice = %q", m.notice)
	}
	for _, task := range svc.AllTasks() {
		if task.ID == "task-3" && task.Title != "Buy milk oat" {
			t.Errorf("title = %q", task.Title)
		}
	}
}

func TestToggleAndDelete(t *testing.T) {
	m, svc, ada := createTestModel(t)
	task := svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	m = started(t, m)

	m = press(t, m, runes("x"))
	if got := svc.AllTasks()[0].Status; got != service.StatusCompleted {
		t.Errorf("status after toggle = %s", got)
	}
	if card, _ := m.app.Profile.Card(); card.Stats.Completed != 1 {
		t.Errorf("stats after toggle = %+v", card.Stats)
	}

	m = press(t, m, runes("D"))
	if len(svc.AllTasks()) != 0 {
		t.Errorf("task %s should be deleted", task.ID)
	}
	if m.notice != "Task deleted" {
		t.Errorf("notice = %q", m.notice)
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Error("empty list message expected")
	}
}

func TestListMutationIgnoredWhileInFlight(t *testing.T) {
	m, svc, ada := createTestModel(t)
	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	m = started(t, m)

	updated, first := m.Update(runes("D"))
	m = updated.(Model)
	if first == nil || !m.mutating {
		t.Fatal("first delete should start")
	}
	for _, k := range []string{"D", "x"} {
		updated, cmd := m.Update(runes(k))
		m = updated.(Model)
		if cmd != nil {
			t.Errorf("%q while a mutation is in flight should be ignored", k)
		}
	}

	m = settle(t, m, first)
	if m.mutating {
		t.Error("guard should clear once the delete lands")
	}
	if svc.Writes != 1 {
		t.Errorf("expected 1 write, got %d", svc.Writes)
	}
	if len(svc.AllTasks()) != 0 || m.notice != "Task deleted" {
		t.Errorf("tasks = %v, notice = %q", svc.AllTasks(), m.notice)
	}
}

func TestCounterChangeRefetches(t *testing.T) {
	m, svc, ada := createTestModel(t)
	m = started(t, m)

	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	m.app.Refresh.Bump()
	reads := svc.Reads

	updated, cmd := m.Update(counterChangedMsg(m.app.Refresh.Value()))
	m = settle(t, updated.(Model), cmd)

	if svc.Reads == reads {
		t.Fatal("a new counter value should fetch")
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Error("list should show the task added elsewhere")
	}

	reads = svc.Reads
	updated, cmd = m.Update(counterChangedMsg(m.app.Refresh.Value()))
	m = settle(t, updated.(Model), cmd)
	if svc.Reads != reads {
		t.Errorf("an already seen value must not fetch, reads %d -> %d", reads, svc.Reads)
	}
}

func TestForwardCounter(t *testing.T) {
	c := refresh.NewCounter()
	values, cancel := c.Subscribe()
	defer cancel()

	got := make(chan tea.Msg, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		forwardCounter(values, done, func(msg tea.Msg) { got <- msg })
		close(exited)
	}()

	c.Bump()
	select {
	case msg := <-got:
		if msg != counterChangedMsg(1) {
			t.Errorf("got %#v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("bump was not forwarded")
	}

	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
}

func TestFiltersAreLocal(t *testing.T) {
	m, svc, ada := createTestModel(t)
	svc.AddTask(ada.UserID, "Buy milk", service.StatusPending, service.PriorityHigh)
	svc.AddTask(ada.UserID, "Call mom", service.StatusCompleted, service.PriorityLow)
	m = started(t, m)
	reads := svc.Reads

	m = press(t, m, runes("/"), runes("MILK"), keyEnter)
	if v := m.visible(); len(v) != 1 || v[0].Title != "Buy milk" {
		t.Errorf("search visible = %+v", v)
	}

	m = press(t, m, runes("c"), runes("s"), runes("s"), runes("s"))
	if m.filter.Status != service.StatusCompleted {
		t.Errorf("status filter = %q", m.filter.Status)
	}
	if v := m.visible(); len(v) != 1 || v[0].Title != "Call mom" {
		t.Errorf("status visible = %+v", v)
	}

	m = press(t, m, runes("s"), runes("p"))
	if m.filter.Status != "" || m.filter.Priority != service.PriorityLow {
		t.Errorf("filter = %+v", m.filter)
	}

	if svc.Reads != reads {
		t.Errorf("filters must not fetch, reads %d -> %d", reads, svc.Reads)
	}
	if card, _ := m.app.Profile.Card(); card.Stats.Total != 2 {
		t.Errorf("stats must ignore filters, got %+v", card.Stats)
	}
}

func TestSearchEscapeClearsQuery(t *testing.T) {
	m, _, _ := createTestModel(t)
	m = started(t, m)

	m = press(t, m, runes("/"), runes("milk"), keyEsc)

	if m.searching || m.filter.Query != "" {
		t.Errorf("searching=%v query=%q", m.searching, m.filter.Query)
	}
}

func TestCycleFilter(t *testing.T) {
	var got []service.Priority
	p := service.Priority("")
	for i := 0; i < 4; i++ {
		p = cycleFilter(service.Priorities, p)
		got = append(got, p)
	}
	want := []service.Priority{service.PriorityLow, service.PriorityMedium, service.PriorityHigh, ""}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := createTestModel(t)

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
