// Package form validates create/edit input before it reaches the store.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nissyi-gh/flowboard/internal/model"
	"github.com/nissyi-gh/flowboard/internal/store"
)

const (
	FieldTitle    = "title"
	FieldDeadline = "deadline"
)

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// Validate checks raw form values and converts them into a TaskInput.
// The title is trimmed and required; the deadline is optional and may lie
// in the past.
func Validate(title, description, deadline string) (model.TaskInput, error) {
	fields := map[string]string{}

	in := model.TaskInput{
		Title:       strings.TrimSpace(title),
		Description: description,
	}
	if in.Title == "" {
		fields[FieldTitle] = "required"
	}

	if value := strings.TrimSpace(deadline); value != "" {
		d, err := model.ParseDate(value)
		if err != nil {
			fields[FieldDeadline] = err.Error()
		} else {
			in.Deadline = &d
		}
	}

	if len(fields) > 0 {
		return model.TaskInput{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

// FieldErrors extracts per-field messages from err, or nil if err is not a
// validation failure.
func FieldErrors(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// Submitter is the part of the store the form writes to.
type Submitter interface {
	Create(in model.TaskInput) model.Task
	Update(id string, in model.TaskInput) bool
}

// Submit validates the values and then updates the task the session was
// opened for, or creates a task for a create session. session is the one
// captured when the form opened: other writers may have closed the store's
// live session since.
func Submit(s Submitter, session store.EditSession, title, description, deadline string) error {
	in, err := Validate(title, description, deadline)
	if err != nil {
		return err
	}

	if session.Editing {
		s.Update(session.Draft.ID, in)
		return nil
	}
	s.Create(in)
	return nil
}
