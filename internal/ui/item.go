package ui

import (
	"github.com/nissyi-gh/flowboard/internal/model"
)

// TaskItem wraps model.Task to satisfy the list.DefaultItem interface.
type TaskItem struct {
	Task model.Task
}

func (i TaskItem) Title() string {
	mark := ""
	switch i.Task.Status {
	case model.StatusCompleted:
		mark = "✔ "
	case model.StatusOverdue:
		mark = "⚠️ "
	case model.StatusRemoved:
		mark = "✗ "
	}
	return mark + i.Task.Title
}

func (i TaskItem) Description() string {
	if i.Task.Deadline == nil {
		return "no deadline"
	}
	return "due " + i.Task.DeadlineString()
}

func (i TaskItem) FilterValue() string {
	return i.Task.Title
}
