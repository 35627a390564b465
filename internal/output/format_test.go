package output_test

import (
	"bytes"
	"testing"

	"taskdeck/internal/api"
	"taskdeck/internal/output"
	"taskdeck/internal/testutil"
)

func TestFormatTaskList(t *testing.T) {
	tasks := []api.Task{
		{ID: "task-1", Title: "buy milk", Status: api.StatusPending, Priority: api.PriorityMedium},
		{ID: "task-2", Title: "walk dog", Status: api.StatusInProgress, Priority: api.PriorityHigh},
		{ID: "task-3", Title: "ship release", Status: api.StatusCompleted, Priority: api.PriorityLow, DueDate: "2026-09-01"},
		{ID: "task-4", Title: "", Status: api.StatusArchived, Priority: api.PriorityMedium},
	}

	var buf bytes.Buffer
	for i, task := range tasks {
		output.FormatTask(&buf, i+1, task)
	}
	testutil.GoldenString(t, "task_list", buf.String())
}

func TestFormatTaskNormalizesTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "buy milk", "   1  [ ] buy milk\n"},
		{"empty", "", "   1  [ ] (untitled)\n"},
		{"whitespace", "   ", "   1  [ ] (untitled)\n"},
		{"newlines", "buy\nmilk", "   1  [ ] buy milk\n"},
		{"crlf", "buy\r\nmilk", "   1  [ ] buy  milk\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatTask(&buf, 1, api.Task{Title: tt.title, Status: api.StatusPending})
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, api.Task{
		ID:          "task-1",
		Title:       "buy milk",
		Status:      api.StatusPending,
		Priority:    api.PriorityHigh,
		Description: "oat, not dairy",
		DueDate:     "2026-09-01",
		Category:    &api.Category{ID: "cat-1", Name: "errands"},
	})
	testutil.GoldenString(t, "task_detail", buf.String())
}

func TestFormatCategory(t *testing.T) {
	var buf bytes.Buffer
	output.FormatCategory(&buf, api.Category{Name: "work", Color: "#ff0000"})
	output.FormatCategory(&buf, api.Category{Name: "home"})
	output.FormatCategory(&buf, api.Category{Name: "  "})
	want := "work  #ff0000\nhome\n(untitled)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestFormatUser(t *testing.T) {
	var buf bytes.Buffer
	output.FormatUser(&buf, api.User{Email: "dev@example.com", Name: "dev"})
	output.FormatUser(&buf, api.User{Email: "anon@example.com"})
	want := "dev@example.com (dev)\nanon@example.com\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
