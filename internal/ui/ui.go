package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nissyi-gh/flowboard/internal/dnd"
	"github.com/nissyi-gh/flowboard/internal/form"
	"github.com/nissyi-gh/flowboard/internal/importer"
	"github.com/nissyi-gh/flowboard/internal/model"
	"github.com/nissyi-gh/flowboard/internal/overdue"
	"github.com/nissyi-gh/flowboard/internal/prompt"
	"github.com/nissyi-gh/flowboard/internal/store"
)

type appState int

const (
	stateBoard appState = iota
	stateForm
	stateConfirm
)

var (
	appStyle          = lipgloss.NewStyle().Padding(1, 2)
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("148"))
	confirmStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	columnStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("241")).
				Padding(0, 1)
	focusedColumnStyle = columnStyle.BorderForeground(lipgloss.Color("170"))

	listTitles = map[model.Status]string{
		model.StatusPending:   "Pending",
		model.StatusCompleted: "Completed",
		model.StatusOverdue:   "Overdue",
		model.StatusRemoved:   "Removed",
	}
)

// sweepMsg fires the overdue sweep; each one schedules the next.
type sweepMsg struct{}

// Model is the top-level BubbleTea model for the board.
type Model struct {
	state    appState
	store    *store.TaskStore
	sweeper  *overdue.Sweeper
	columns  []list.Model
	focus    int
	form     taskForm
	keys     keyMap
	help     help.Model
	info     string
	err      error
	width    int
	height   int
	copyText func(string) error
	readText func() (string, error)
}

// NewModel creates a board over s. The sweeper runs once at start and then
// on its interval for as long as the program runs.
func NewModel(s *store.TaskStore, sw *overdue.Sweeper) Model {
	columns := make([]list.Model, len(model.Statuses))
	for i, status := range model.Statuses {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(0)
		l := list.New(nil, delegate, 0, 0)
		l.Title = listTitles[status]
		l.Styles.Title = titleStyle
		l.SetShowHelp(false)
		l.SetFilteringEnabled(true)
		l.SetStatusBarItemName("task", "tasks")
		l.DisableQuitKeybindings()
		columns[i] = l
	}

	m := Model{
		state:    stateBoard,
		store:    s,
		sweeper:  sw,
		columns:  columns,
		keys:     newKeyMap(),
		help:     help.New(),
		copyText: clipboard.WriteAll,
		readText: clipboard.ReadAll,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return sweepMsg{} }
}

func (m Model) scheduleSweep() tea.Cmd {
	return tea.Tick(m.sweeper.Interval, func(time.Time) tea.Msg { return sweepMsg{} })
}

func (m Model) focusedStatus() model.Status {
	return model.Statuses[m.focus]
}

func (m Model) selectedTask() (model.Task, bool) {
	item, ok := m.columns[m.focus].SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// refresh reloads every column from the store, keeping each column's
// selection on the same task when it is still there.
func (m *Model) refresh() tea.Cmd {
	lists := m.store.ByStatus()
	var cmds []tea.Cmd
	for i, status := range model.Statuses {
		col := &m.columns[i]
		selectedID := ""
		if item, ok := col.SelectedItem().(TaskItem); ok {
			selectedID = item.Task.ID
		}
		cursor := col.Index()

		tasks := lists.Get(status)
		items := make([]list.Item, len(tasks))
		for j, t := range tasks {
			items[j] = TaskItem{Task: t}
			if t.ID == selectedID {
				cursor = j
			}
		}
		cmds = append(cmds, col.SetItems(items))
		if cursor >= len(items) {
			cursor = len(items) - 1
		}
		if cursor >= 0 {
			col.Select(cursor)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case sweepMsg:
		m.sweeper.Sweep()
		cmd := m.refresh()
		return m, tea.Batch(cmd, m.scheduleSweep())
	}

	switch m.state {
	case stateForm:
		return m.updateForm(msg)
	case stateConfirm:
		return m.updateConfirm(msg)
	}
	return m.updateBoard(msg)
}

func (m *Model) resize() {
	h, v := appStyle.GetFrameSize()
	contentWidth := m.width - h
	colWidth := contentWidth/len(m.columns) - columnStyle.GetHorizontalFrameSize()
	colHeight := m.height - v - columnStyle.GetVerticalFrameSize() - 3
	if colWidth < 10 {
		colWidth = 10
	}
	if colHeight < 5 {
		colHeight = 5
	}
	for i := range m.columns {
		m.columns[i].SetSize(colWidth, colHeight)
	}
	m.help.Width = contentWidth
	if m.state == stateForm {
		m.form.setWidth(contentWidth / 2)
	}
}

func (m Model) updateBoard(msg tea.Msg) (tea.Model, tea.Cmd) {
	col := &m.columns[m.focus]
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || col.SettingFilter() {
		var cmd tea.Cmd
		*col, cmd = col.Update(msg)
		return m, cmd
	}

	m.info = ""
	m.err = nil

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(keyMsg, m.keys.Add):
		m.store.BeginCreate()
		return m.openForm()

	case key.Matches(keyMsg, m.keys.Edit):
		if t, ok := m.selectedTask(); ok && m.store.BeginEdit(t.ID) {
			return m.openForm()
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Complete):
		if t, ok := m.selectedTask(); ok {
			m.store.MarkComplete(t.ID)
			return m, m.refresh()
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Remove):
		if _, ok := m.selectedTask(); ok {
			m.state = stateConfirm
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.MoveLeft):
		return m.moveSelected(dnd.Neighbor(m.focusedStatus(), -1))

	case key.Matches(keyMsg, m.keys.MoveRight):
		return m.moveSelected(dnd.Neighbor(m.focusedStatus(), 1))

	case key.Matches(keyMsg, m.keys.MoveTo):
		idx := int(keyMsg.Runes[0] - '1')
		return m.moveSelected(model.Statuses[idx])

	case key.Matches(keyMsg, m.keys.NextList):
		m.focus = (m.focus + 1) % len(m.columns)
		return m, nil

	case key.Matches(keyMsg, m.keys.PrevList):
		m.focus = (m.focus + len(m.columns) - 1) % len(m.columns)
		return m, nil

	case key.Matches(keyMsg, m.keys.Sweep):
		n := m.sweeper.Sweep()
		m.info = fmt.Sprintf("%d task(s) marked overdue", n)
		return m, m.refresh()

	case key.Matches(keyMsg, m.keys.CopyBoard):
		data, err := importer.Export(m.store.ByStatus())
		if err == nil {
			err = m.copyText(string(data))
		}
		m.report(err, "board copied to clipboard")
		return m, nil

	case key.Matches(keyMsg, m.keys.Paste):
		return m.importClipboard()

	case key.Matches(keyMsg, m.keys.Prompt):
		text := prompt.GenerateNew()
		if t, ok := m.selectedTask(); ok {
			text = prompt.GenerateFromTask(t)
		}
		m.report(m.copyText(text), "prompt copied to clipboard")
		return m, nil
	}

	var cmd tea.Cmd
	*col, cmd = col.Update(msg)
	return m, cmd
}

// moveSelected drops the selected task at the end of the target list, the
// keyboard equivalent of dragging it there.
func (m Model) moveSelected(target model.Status) (tea.Model, tea.Cmd) {
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	source := dnd.Location{List: string(m.focusedStatus()), Index: m.columns[m.focus].Index()}
	dest := source
	if target != m.focusedStatus() {
		dest = dnd.Location{List: string(target), Index: len(m.columns[indexOf(target)].Items())}
	}

	if !dnd.Apply(m.store, dnd.Drop{TaskID: t.ID, Source: source, Destination: &dest}) {
		return m, nil
	}
	if target != m.focusedStatus() {
		m.info = fmt.Sprintf("moved %q to %s", t.Title, listTitles[target])
	}
	return m, m.refresh()
}

func (m Model) importClipboard() (tea.Model, tea.Cmd) {
	text, err := m.readText()
	if err != nil {
		m.report(fmt.Errorf("read clipboard: %w", err), "")
		return m, nil
	}
	n, err := importer.Import(m.store, []byte(text))
	m.report(err, fmt.Sprintf("imported %d task(s)", n))
	return m, m.refresh()
}

func (m *Model) report(err error, info string) {
	if err != nil {
		m.err = err
		m.info = ""
		return
	}
	m.info = info
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	session, ok := m.store.Session()
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = newTaskForm(session)
	m.form.setWidth((m.width - appStyle.GetHorizontalFrameSize()) / 2)
	m.state = stateForm
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.store.CancelForm()
			m.state = stateBoard
			return m, nil
		case "ctrl+s":
			return m.submitForm()
		case "enter":
			if m.form.focus != fieldDescription {
				return m.submitForm()
			}
		case "tab":
			cmd := m.form.next()
			return m, cmd
		case "shift+tab":
			cmd := m.form.prev()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title, description, deadline := m.form.values()
	if err := form.Submit(m.store, m.form.session, title, description, deadline); err != nil {
		m.form.err = err
		return m, nil
	}
	m.state = stateBoard
	return m, m.refresh()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y":
			if t, ok := m.selectedTask(); ok {
				m.store.Remove(t.ID)
			}
			m.state = stateBoard
			return m, m.refresh()
		case "n", "esc":
			m.state = stateBoard
			return m, nil
		}
	}
	return m, nil
}

func (m Model) renderDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return statusStyle.Render("(no task selected)")
	}
	desc := statusStyle.Render("(no description)")
	if t.Description != "" {
		desc = t.Description
	}
	due := "none"
	if t.Deadline != nil {
		due = t.DeadlineString()
		if t.Status == model.StatusOverdue {
			due = errorStyle.Render(due)
		}
	}
	return fmt.Sprintf("%s  %s\n%s\ndeadline: %s  created: %s",
		titleStyle.Render(t.Title),
		statusStyle.Render("["+string(t.Status)+"]"),
		desc,
		due,
		t.CreatedAt.Format("2006-01-02 15:04"),
	)
}

func (m Model) formErrorView() string {
	if m.form.err == nil {
		return ""
	}
	if fields := form.FieldErrors(m.form.err); fields != nil {
		var lines []string
		for _, name := range []string{form.FieldTitle, form.FieldDeadline} {
			if msg, ok := fields[name]; ok {
				lines = append(lines, errorStyle.Render(name+": "+msg))
			}
		}
		return "\n" + strings.Join(lines, "\n") + "\n"
	}
	return "\n" + errorStyle.Render("Error: "+m.form.err.Error()) + "\n"
}

func (m Model) View() string {
	switch m.state {
	case stateForm:
		return appStyle.Render(
			m.form.view() + "\n" +
				m.formErrorView() + "\n" +
				statusStyle.Render("tab: next field • enter/ctrl+s: save • esc: cancel"),
		)
	case stateConfirm:
		t, _ := m.selectedTask()
		return appStyle.Render(
			confirmStyle.Render("Remove Task?") + "\n\n" +
				"  " + t.Title + "\n\n" +
				statusStyle.Render("y: remove • n/esc: cancel"),
		)
	}

	cols := make([]string, len(m.columns))
	for i := range m.columns {
		style := columnStyle
		if i == m.focus {
			style = focusedColumnStyle
		}
		cols[i] = style.Render(m.columns[i].View())
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	var footer string
	switch {
	case m.err != nil:
		footer = errorStyle.Render("Error: " + m.err.Error())
	case m.info != "":
		footer = infoStyle.Render(m.info)
	}

	return appStyle.Render(board + "\n" + m.renderDetail() + "\n" + footer + "\n" + m.help.View(m.keys))
}

func indexOf(status model.Status) int {
	for i, s := range model.Statuses {
		if s == status {
			return i
		}
	}
	return 0
}
