package store

import (
	"fmt"
	"strings"

	"github.com/nissyi-gh/flowboard/internal/model"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventStatus  = "status"
)

func formatCreatedDetails(t model.Task) string {
	return fmt.Sprintf("created: title='%s' status=%s due=%s", t.Title, t.Status, valueOrNone(t.DeadlineString()))
}

func formatTaskDiff(before, after model.Task) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.DeadlineString() != after.DeadlineString() {
		changes = append(changes, formatChange("due", before.DeadlineString(), after.DeadlineString()))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}
	return "updated: " + strings.Join(changes, "; ")
}

func formatStatusChange(from, to model.Status) string {
	return formatChange("status", string(from), string(to))
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}
