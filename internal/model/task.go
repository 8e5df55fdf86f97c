package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and form representation of a deadline.
const DateLayout = "2006-01-02"

// Status is the list a task currently belongs to.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusRemoved   Status = "removed"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusPending, StatusCompleted, StatusOverdue, StatusRemoved}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOverdue, StatusRemoved:
		return true
	}
	return false
}

// ParseStatus converts external text into a Status.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.TrimSpace(strings.ToLower(value)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

// Task represents a single task held by the store.
type Task struct {
	ID          string
	Title       string
	Description string
	Deadline    *time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasDeadline returns true if the task has a deadline set.
func (t Task) HasDeadline() bool {
	return t.Deadline != nil
}

// DeadlineString returns the deadline as YYYY-MM-DD, or "" if unset.
func (t Task) DeadlineString() string {
	return FormatDate(t.Deadline)
}

// IsPastDue returns true if the deadline lies strictly before now.
func (t Task) IsPastDue(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return t.Deadline.Before(now)
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return t
}

// TaskInput holds the validated, mutable fields of a task.
type TaskInput struct {
	Title       string
	Description string
	Deadline    *time.Time
}

// Draft is the set of values shown in the create/edit form.
// Description and Deadline are "" rather than absent.
type Draft struct {
	ID          string
	Title       string
	Description string
	Deadline    string
	Status      Status
}

// DraftOf fills a draft from an existing task.
func DraftOf(t Task) Draft {
	return Draft{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.DeadlineString(),
		Status:      t.Status,
	}
}

// BlankDraft returns an empty create template carrying id.
func BlankDraft(id string) Draft {
	return Draft{ID: id, Status: StatusPending}
}

// HistoryEntry records one change to a task.
type HistoryEntry struct {
	TaskID  string
	Event   string
	Details string
	At      time.Time
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", value)
	}
	return d, nil
}

// FormatDate renders d as YYYY-MM-DD, or "" for nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}
