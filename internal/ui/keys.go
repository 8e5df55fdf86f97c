package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add       key.Binding
	Edit      key.Binding
	Complete  key.Binding
	Remove    key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	MoveTo    key.Binding
	NextList  key.Binding
	PrevList  key.Binding
	Sweep     key.Binding
	CopyBoard key.Binding
	Paste     key.Binding
	Prompt    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a/n", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "complete"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "move right"),
		),
		MoveTo: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "move to list"),
		),
		NextList: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab/l", "next list"),
		),
		PrevList: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("shift+tab/h", "prev list"),
		),
		Sweep: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "check overdue"),
		),
		CopyBoard: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy YAML"),
		),
		Paste: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "import YAML"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "copy prompt"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Complete, k.Remove, k.MoveLeft, k.MoveRight, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Edit, k.Complete, k.Remove},
		{k.MoveLeft, k.MoveRight, k.MoveTo, k.NextList, k.PrevList},
		{k.Sweep, k.CopyBoard, k.Paste, k.Prompt},
		{k.Help, k.Quit},
	}
}
