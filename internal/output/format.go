// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/api"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {MARKER} {TITLE}{SUFFIXES}\n" where suffixes carry
// high priority and due date when present.
func FormatTask(w io.Writer, num int, task api.Task) {
	title := normalizeTitle(task.Title)

	var suffix strings.Builder
	if task.Priority == api.PriorityHigh {
		suffix.WriteString(" !")
	}
	if task.DueDate != "" {
		fmt.Fprintf(&suffix, " (due %s)", task.DueDate)
	}

	fmt.Fprintf(w, "%4d  %s %s%s\n", num, statusMarker(task.Status), title, suffix.String())
}

// FormatTaskDetail formats a full task record for single-task output.
func FormatTaskDetail(w io.Writer, task api.Task) {
	fmt.Fprintf(w, "id:       %s\n", task.ID)
	fmt.Fprintf(w, "title:    %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:   %s\n", task.Status)
	fmt.Fprintf(w, "priority: %s\n", task.Priority)
	if task.Description != "" {
		fmt.Fprintf(w, "notes:    %s\n", task.Description)
	}
	if task.DueDate != "" {
		fmt.Fprintf(w, "due:      %s\n", task.DueDate)
	}
	if task.Category != nil {
		fmt.Fprintf(w, "category: %s\n", task.Category.Name)
	} else if task.CategoryID != "" {
		fmt.Fprintf(w, "category: %s\n", task.CategoryID)
	}
}

// FormatCategory formats a category line.
func FormatCategory(w io.Writer, cat api.Category) {
	name := cat.Name
	if strings.TrimSpace(name) == "" {
		name = "(untitled)"
	}
	if cat.Color != "" {
		fmt.Fprintf(w, "%s  %s\n", name, cat.Color)
		return
	}
	fmt.Fprintln(w, name)
}

// FormatUser formats the authenticated identity for whoami.
func FormatUser(w io.Writer, u api.User) {
	if u.Name != "" {
		fmt.Fprintf(w, "%s (%s)\n", u.Email, u.Name)
		return
	}
	fmt.Fprintln(w, u.Email)
}

func statusMarker(s api.TaskStatus) string {
	switch s {
	case api.StatusCompleted:
		return "[x]"
	case api.StatusInProgress:
		return "[~]"
	case api.StatusArchived:
		return "[-]"
	default:
		return "[ ]"
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
