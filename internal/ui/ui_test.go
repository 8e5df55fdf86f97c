package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/flowboard/internal/model"
	"github.com/nissyi-gh/flowboard/internal/overdue"
	"github.com/nissyi-gh/flowboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeClipboard struct {
	text string
	err  error
}

func newTestModel(t *testing.T, s *store.TaskStore) (Model, *fakeClipboard) {
	t.Helper()
	sw := overdue.New(s, time.Hour, nil)
	sw.Now = func() time.Time { return testNow }

	cb := &fakeClipboard{}
	m := NewModel(s, sw)
	m.copyText = func(text string) error {
		if cb.err != nil {
			return cb.err
		}
		cb.text = text
		return nil
	}
	m.readText = func() (string, error) { return cb.text, cb.err }

	m = send(t, m, tea.WindowSizeMsg{Width: 160, Height: 48})
	return m, cb
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = send(t, m, keyMsg(k))
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestAddTaskThroughForm(t *testing.T) {
	s := store.New()
	m, _ := newTestModel(t, s)

	m = press(t, m, "a")
	require.Equal(t, stateForm, m.state)
	require.True(t, s.FormVisible())
	assert.False(t, s.IsEditing())

	m = typeText(t, m, "Buy milk")
	m = press(t, m, "tab")
	m = typeText(t, m, "two liters")
	m = press(t, m, "tab")
	m = typeText(t, m, "2099")
	m = press(t, m, "tab")
	m = typeText(t, m, "01")
	m = press(t, m, "tab")
	m = typeText(t, m, "15")
	m = press(t, m, "enter")

	assert.Equal(t, stateBoard, m.state)
	assert.False(t, s.FormVisible())

	pending := s.ByStatus().Pending
	require.Len(t, pending, 1)
	assert.Equal(t, "Buy milk", pending[0].Title)
	assert.Equal(t, "two liters", pending[0].Description)
	assert.Equal(t, "2099-01-15", pending[0].DeadlineString())
	assert.Equal(t, model.StatusPending, pending[0].Status)

	task, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, pending[0].ID, task.ID)
}

func TestEmptyTitleKeepsFormOpen(t *testing.T) {
	s := store.New()
	m, _ := newTestModel(t, s)

	m = press(t, m, "a")
	m = typeText(t, m, "   ")
	m = press(t, m, "enter")

	assert.Equal(t, stateForm, m.state)
	assert.Error(t, m.form.err)
	assert.Contains(t, m.View(), "title: required")
	assert.Zero(t, s.Len())
}

func TestCancelFormDoesNotCreate(t *testing.T) {
	s := store.New()
	m, _ := newTestModel(t, s)

	m = press(t, m, "a")
	m = typeText(t, m, "draft")
	m = press(t, m, "esc")

	assert.Equal(t, stateBoard, m.state)
	assert.False(t, s.FormVisible())
	assert.Zero(t, s.Len())
}

func TestEditTask(t *testing.T) {
	s := store.New()
	task := s.Create(model.TaskInput{Title: "old"})
	m, _ := newTestModel(t, s)

	m = press(t, m, "e")
	require.Equal(t, stateForm, m.state)
	assert.True(t, s.IsEditing())
	assert.Equal(t, "old", m.form.title.Value())

	m = typeText(t, m, " news")
	m = press(t, m, "ctrl+s")

	got, _ := s.Get(task.ID)
	assert.Equal(t, "old news", got.Title)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, stateBoard, m.state)
}

func TestCompleteAndRemove(t *testing.T) {
	s := store.New()
	a := s.Create(model.TaskInput{Title: "a"})
	b := s.Create(model.TaskInput{Title: "b"})
	m, _ := newTestModel(t, s)

	m = press(t, m, "x")
	got, _ := s.Get(a.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)

	m = press(t, m, "d")
	require.Equal(t, stateConfirm, m.state)
	m = press(t, m, "n")
	got, _ = s.Get(b.ID)
	assert.Equal(t, model.StatusPending, got.Status)

	m = press(t, m, "d", "y")
	assert.Equal(t, stateBoard, m.state)
	got, _ = s.Get(b.ID)
	assert.Equal(t, model.StatusRemoved, got.Status)
	assert.Len(t, s.ByStatus().Removed, 1)
}

func TestMoveBetweenLists(t *testing.T) {
	s := store.New()
	task := s.Create(model.TaskInput{Title: "a"})
	m, _ := newTestModel(t, s)

	m = press(t, m, "[")
	got, _ := s.Get(task.ID)
	assert.Equal(t, model.StatusPending, got.Status, "moving left from the first list is a no-op")
	assert.Len(t, s.History(task.ID), 1)

	m = press(t, m, "]")
	got, _ = s.Get(task.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)

	m = press(t, m, "l", "4")
	got, _ = s.Get(task.ID)
	assert.Equal(t, model.StatusRemoved, got.Status)

	m = press(t, m, "l", "l", "1")
	got, _ = s.Get(task.ID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Contains(t, m.info, "Pending")
}

func TestSweepMessageFlagsOverdueAndReschedules(t *testing.T) {
	s := store.New()
	d := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	task := s.Create(model.TaskInput{Title: "late", Deadline: &d})
	m, _ := newTestModel(t, s)

	require.NotNil(t, m.Init())
	next, cmd := m.Update(sweepMsg{})
	m = next.(Model)

	assert.NotNil(t, cmd)
	got, _ := s.Get(task.ID)
	assert.Equal(t, model.StatusOverdue, got.Status)
	assert.Len(t, m.columns[2].Items(), 1)
	assert.Empty(t, m.columns[0].Items())
}

func TestManualSweep(t *testing.T) {
	s := store.New()
	d := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Create(model.TaskInput{Title: "late", Deadline: &d})
	m, _ := newTestModel(t, s)

	m = press(t, m, "r")
	assert.Equal(t, "1 task(s) marked overdue", m.info)
}

func TestClipboardExportAndImport(t *testing.T) {
	s := store.New()
	s.Create(model.TaskInput{Title: "exported"})
	m, cb := newTestModel(t, s)

	m = press(t, m, "y")
	assert.Contains(t, cb.text, "title: exported")
	assert.Equal(t, "board copied to clipboard", m.info)

	cb.text = "tasks:\n  - title: pasted\n    status: overdue\n"
	m = press(t, m, "p")
	assert.Equal(t, "imported 1 task(s)", m.info)
	overdueTasks := s.ByStatus().Overdue
	require.Len(t, overdueTasks, 1)
	assert.Equal(t, "pasted", overdueTasks[0].Title)

	cb.err = errors.New("no clipboard")
	m = press(t, m, "p")
	assert.ErrorContains(t, m.err, "read clipboard")
}

func TestCopyPrompt(t *testing.T) {
	s := store.New()
	m, cb := newTestModel(t, s)

	m = press(t, m, "P")
	assert.Contains(t, cb.text, "task planning assistant")
	assert.Equal(t, "prompt copied to clipboard", m.info)
}

func TestViewRendersColumns(t *testing.T) {
	s := store.New()
	s.Create(model.TaskInput{Title: "visible"})
	m, _ := newTestModel(t, s)

	view := m.View()
	for _, title := range []string{"Pending", "Completed", "Overdue", "Removed"} {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "visible")
}

func TestDateInputValue(t *testing.T) {
	d := newDateInput()
	d.now = func() time.Time { return testNow }

	assert.True(t, d.IsEmpty())
	d.SetValue("2031-02-03")
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2031-02-03", v)

	d.SetValue("")
	d.parts[partDay].SetValue("7")
	v, err = d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2030-01-07", v)

	d.parts[partDay].SetValue("")
	_, err = d.Value()
	assert.EqualError(t, err, "day is required")

	d.SetValue("2031-02-30")
	_, err = d.Value()
	assert.EqualError(t, err, "invalid date: 2031-02-30")
	assert.Equal(t, "2031-02-30", d.Raw())
}

func TestDateInputWalksParts(t *testing.T) {
	d := newDateInput()
	d.Focus(false)
	assert.Equal(t, partYear, d.focus)

	_, ok := d.Prev()
	assert.False(t, ok)

	_, ok = d.Next()
	assert.True(t, ok)
	_, ok = d.Next()
	assert.True(t, ok)
	assert.Equal(t, partDay, d.focus)
	_, ok = d.Next()
	assert.False(t, ok)

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, partMonth, d.focus)

	d.Focus(true)
	assert.Equal(t, partDay, d.focus)
}

func TestInvalidDeadlineKeepsFormOpen(t *testing.T) {
	s := store.New()
	m, _ := newTestModel(t, s)

	m = press(t, m, "a")
	m = typeText(t, m, "bad date")
	m = press(t, m, "tab", "tab")
	m = typeText(t, m, "2031")
	m = press(t, m, "tab")
	m = typeText(t, m, "02")
	m = press(t, m, "tab")
	m = typeText(t, m, "30")
	m = press(t, m, "enter")

	assert.Equal(t, stateForm, m.state)
	assert.Contains(t, m.View(), "deadline: invalid date: 2031-02-30")
	assert.Zero(t, s.Len())
}

func TestEditSurvivesConcurrentCreate(t *testing.T) {
	s := store.New()
	task := s.Create(model.TaskInput{Title: "original"})
	m, _ := newTestModel(t, s)

	m = press(t, m, "e")
	require.Equal(t, stateForm, m.state)

	// Another writer (the web API) creates a task, which closes the store's
	// session while the form is still on screen.
	s.Create(model.TaskInput{Title: "from web"})
	require.False(t, s.FormVisible())

	m = typeText(t, m, "!")
	m = press(t, m, "enter")

	assert.Equal(t, stateBoard, m.state)
	got, _ := s.Get(task.ID)
	assert.Equal(t, "original!", got.Title)
	assert.Equal(t, 2, s.Len())
}

func TestCreateSurvivesConcurrentUpdate(t *testing.T) {
	s := store.New()
	task := s.Create(model.TaskInput{Title: "existing"})
	m, _ := newTestModel(t, s)

	m = press(t, m, "a")
	require.True(t, s.Update(task.ID, model.TaskInput{Title: "renamed"}))

	m = typeText(t, m, "fresh")
	m = press(t, m, "enter")

	assert.Equal(t, stateBoard, m.state)
	assert.Equal(t, 2, s.Len())
	got, _ := s.Get(task.ID)
	assert.Equal(t, "renamed", got.Title)
}
