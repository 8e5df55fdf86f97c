package store

import (
	"fmt"
	"strings"

	"github.com/nissyi-gh/flowboard/internal/model"
)

// Policy decides whether a task may move from one status to another.
// Every status change in the store is routed through it.
type Policy interface {
	Allow(from, to model.Status) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(from, to model.Status) bool

func (f PolicyFunc) Allow(from, to model.Status) bool { return f(from, to) }

// Permissive lets any status reach any other status.
var Permissive Policy = PolicyFunc(func(from, to model.Status) bool { return true })

// Strict is a tightened transition table: removed tasks can only be restored
// to pending and completed tasks never become overdue.
var Strict Policy = transitionTable{
	model.StatusPending:   {model.StatusCompleted, model.StatusOverdue, model.StatusRemoved},
	model.StatusOverdue:   {model.StatusPending, model.StatusCompleted, model.StatusRemoved},
	model.StatusCompleted: {model.StatusPending, model.StatusRemoved},
	model.StatusRemoved:   {model.StatusPending},
}

type transitionTable map[model.Status][]model.Status

func (t transitionTable) Allow(from, to model.Status) bool {
	if from == to {
		return true
	}
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}

// SweepPolicy reports whether a task in the given status is eligible to be
// flagged overdue once its deadline has passed.
type SweepPolicy func(model.Status) bool

// SweepPending only flags tasks that are still pending.
func SweepPending(s model.Status) bool { return s == model.StatusPending }

// SweepAll flags every past-deadline task, including completed and removed ones.
func SweepAll(model.Status) bool { return true }

// ParseSweepPolicy maps a config value to a SweepPolicy.
func ParseSweepPolicy(name string) (SweepPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pending":
		return SweepPending, nil
	case "all":
		return SweepAll, nil
	}
	return nil, fmt.Errorf("unknown sweep policy %q", name)
}
