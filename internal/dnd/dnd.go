// Package dnd turns drag-and-drop gestures between board lists into status
// changes.
package dnd

import "github.com/nissyi-gh/flowboard/internal/model"

// Location is a position inside a board list. List is the list id, which is
// the status name.
type Location struct {
	List  string `json:"list"`
	Index int    `json:"index"`
}

// Drop describes a finished gesture. Destination is nil when the gesture was
// cancelled or ended outside any list.
type Drop struct {
	TaskID      string    `json:"task_id"`
	Source      Location  `json:"source"`
	Destination *Location `json:"destination,omitempty"`
}

// Resolve returns the status change a drop asks for. ok is false when the
// drop must not reach the store: no destination, the same position, or an
// unknown target list.
func Resolve(d Drop) (id string, status model.Status, ok bool) {
	if d.Destination == nil {
		return "", "", false
	}
	if d.Destination.List == d.Source.List && d.Destination.Index == d.Source.Index {
		return "", "", false
	}
	target := model.Status(d.Destination.List)
	if !target.Valid() {
		return "", "", false
	}
	return d.TaskID, target, true
}

// Mover is the store operation a drop drives.
type Mover interface {
	SetStatus(id string, status model.Status) bool
}

// Apply resolves d and forwards it to m. It reports whether the store
// accepted a change.
func Apply(m Mover, d Drop) bool {
	id, status, ok := Resolve(d)
	if !ok {
		return false
	}
	return m.SetStatus(id, status)
}

// Neighbor returns the list next to status in board order, moving by step
// and clamping at both ends.
func Neighbor(status model.Status, step int) model.Status {
	idx := 0
	for i, s := range model.Statuses {
		if s == status {
			idx = i
			break
		}
	}
	idx += step
	if idx < 0 {
		idx = 0
	}
	if idx >= len(model.Statuses) {
		idx = len(model.Statuses) - 1
	}
	return model.Statuses[idx]
}
