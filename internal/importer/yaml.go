package importer

import (
	"fmt"

	"github.com/nissyi-gh/flowboard/internal/form"
	"github.com/nissyi-gh/flowboard/internal/model"
	"github.com/nissyi-gh/flowboard/internal/store"
	"gopkg.in/yaml.v3"
)

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Deadline    string `yaml:"deadline,omitempty"`
	Status      string `yaml:"status,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Target is the part of the store an import writes to.
type Target interface {
	Create(in model.TaskInput) model.Task
	SetStatus(id string, status model.Status) bool
}

// Import parses a YAML document and creates its tasks in the store.
// Every task is validated before any is created, so a bad entry leaves the
// store untouched. Returns the number of tasks created.
func Import(s Target, data []byte) (int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return 0, fmt.Errorf("YAML parse error: %w", err)
	}

	if len(input.Tasks) == 0 {
		return 0, fmt.Errorf("no tasks found in YAML")
	}

	type entry struct {
		in     model.TaskInput
		status model.Status
	}
	entries := make([]entry, 0, len(input.Tasks))
	for i, yt := range input.Tasks {
		in, err := form.Validate(yt.Title, yt.Description, yt.Deadline)
		if err != nil {
			return 0, fmt.Errorf("task %d: %w", i+1, err)
		}
		status := model.StatusPending
		if yt.Status != "" {
			if status, err = model.ParseStatus(yt.Status); err != nil {
				return 0, fmt.Errorf("task %d: %w", i+1, err)
			}
		}
		entries = append(entries, entry{in: in, status: status})
	}

	for _, e := range entries {
		task := s.Create(e.in)
		if e.status != model.StatusPending {
			s.SetStatus(task.ID, e.status)
		}
	}
	return len(entries), nil
}

// Export renders the board in the import format, list by list.
func Export(lists store.Lists) ([]byte, error) {
	var out YAMLInput
	for _, status := range model.Statuses {
		for _, t := range lists.Get(status) {
			out.Tasks = append(out.Tasks, YAMLTask{
				Title:       t.Title,
				Description: t.Description,
				Deadline:    t.DeadlineString(),
				Status:      string(t.Status),
			})
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}
	return data, nil
}
