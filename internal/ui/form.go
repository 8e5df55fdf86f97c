package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/flowboard/internal/store"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
	fieldCount
)

// taskForm collects title, description and deadline for create and edit.
// session is fixed when the form opens and decides what a save does.
type taskForm struct {
	title       textinput.Model
	description textarea.Model
	deadline    dateInput
	focus       int
	session     store.EditSession
	err         error
}

func newTaskForm(session store.EditSession) (taskForm, tea.Cmd) {
	draft := session.Draft

	ti := textinput.New()
	ti.Placeholder = "Task title..."
	ti.CharLimit = 256
	ti.SetValue(draft.Title)

	ta := textarea.New()
	ta.Placeholder = "Task description..."
	ta.CharLimit = 4096
	ta.SetHeight(4)
	ta.SetValue(draft.Description)

	di := newDateInput()
	di.SetValue(draft.Deadline)

	f := taskForm{
		title:       ti,
		description: ta,
		deadline:    di,
		session:     session,
	}
	cmd := f.focusField(fieldTitle)
	return f, cmd
}

func (f *taskForm) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	f.title.Width = width - 4
	f.description.SetWidth(width)
}

func (f *taskForm) focusField(idx int) tea.Cmd {
	f.focus = idx
	f.title.Blur()
	f.description.Blur()
	f.deadline.Blur()

	switch idx {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	default:
		return f.deadline.Focus(false)
	}
}

// next moves focus forward, stepping through the date parts first.
func (f *taskForm) next() tea.Cmd {
	if f.focus == fieldDeadline {
		if cmd, ok := f.deadline.Next(); ok {
			return cmd
		}
	}
	return f.focusField((f.focus + 1) % fieldCount)
}

func (f *taskForm) prev() tea.Cmd {
	if f.focus == fieldDeadline {
		if cmd, ok := f.deadline.Prev(); ok {
			return cmd
		}
	}
	idx := (f.focus + fieldCount - 1) % fieldCount
	if idx == fieldDeadline {
		f.focusField(idx)
		return f.deadline.Focus(true)
	}
	return f.focusField(idx)
}

// values returns the field contents. A date that does not resolve is
// returned as typed so validation reports it.
func (f *taskForm) values() (title, description, deadline string) {
	title = f.title.Value()
	description = f.description.Value()
	if f.deadline.IsEmpty() {
		return title, description, ""
	}
	d, err := f.deadline.Value()
	if err != nil {
		return title, description, f.deadline.Raw()
	}
	return title, description, d
}

func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	default:
		f.deadline, cmd = f.deadline.Update(msg)
	}
	return f, cmd
}

func (f taskForm) view() string {
	header := "New Task"
	if f.session.Editing {
		header = "Edit Task"
	}

	label := func(idx int, name string) string {
		if f.focus == idx {
			return focusedLabelStyle.Render(name)
		}
		return statusStyle.Render(name)
	}

	return titleStyle.Render(header) + "\n\n" +
		label(fieldTitle, "Title") + "\n" + f.title.View() + "\n\n" +
		label(fieldDescription, "Description") + "\n" + f.description.View() + "\n\n" +
		label(fieldDeadline, "Deadline") + "\n" + f.deadline.View()
}
