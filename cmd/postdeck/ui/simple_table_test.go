package ui

import (
	"strings"
	"testing"
)

func TestSimpleTable_RendersRows(t *testing.T) {
	t.Parallel()

	table := NewSimpleTable("Best posting times", []string{"Day", "Slots"})
	table.AddRow("Monday", "9am, 6pm")
	table.AddRow("Friday", "11am")

	out := table.View(NewStyles(DarkTheme()))

	for _, want := range []string{"Best posting times", "Day", "Slots", "Monday", "9am, 6pm", "Friday"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestSimpleTable_EmptyRendersNothing(t *testing.T) {
	t.Parallel()

	table := NewSimpleTable("Empty", []string{"A"})
	if out := table.View(NewStyles(DarkTheme())); out != "" {
		t.Errorf("empty table rendered %q", out)
	}
}
