package prompt

import (
	"fmt"
	"strings"

	"github.com/nissyi-gh/flowboard/internal/model"
)

const yamlFormat = `Reply in the YAML format below. Output only the YAML code block and no other text.

` + "```yaml" + `
tasks:
  - title: "Task title"
    description: "What needs to be done"
    deadline: "YYYY-MM-DD"
` + "```" + `

Fields:
- title: (required) short task title
- description: (optional) details of the task
- deadline: (optional) due date in YYYY-MM-DD format`

// GenerateNew returns a prompt for creating new tasks from scratch.
func GenerateNew() string {
	return fmt.Sprintf(`You are a task planning assistant.
Break the user's request down into tasks of a sensible size.

%s
`, yamlFormat)
}

// GenerateFromTask returns a prompt for breaking down an existing task.
func GenerateFromTask(task model.Task) string {
	var sb strings.Builder

	sb.WriteString("You are a task planning assistant.\n")
	sb.WriteString("Break the task below down into smaller, concrete tasks.\n\n")

	sb.WriteString("## Task\n")
	sb.WriteString(fmt.Sprintf("- Title: %s\n", task.Title))

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("- Description: %s\n", task.Description))
	}
	if task.Deadline != nil {
		sb.WriteString(fmt.Sprintf("- Deadline: %s\n", task.DeadlineString()))
		sb.WriteString("\nNo new task may have a deadline later than this one.\n")
	}
	sb.WriteString(fmt.Sprintf("- Status: %s\n", task.Status))

	sb.WriteString("\n")
	sb.WriteString(yamlFormat)
	sb.WriteString("\n")

	return sb.String()
}
