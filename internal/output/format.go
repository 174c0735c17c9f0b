// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/service"
)

const (
	// SectionSeparator is the separator line around section headers.
	SectionSeparator = "------------"

	// ShortIDLength is the number of id characters shown by --ids.
	ShortIDLength = 8
)

// FormatTask formats a task line.
// Format: "{N:>4}  {TITLE}\n", or "{N:>4}  {ID:8}  {TITLE}\n" when showID is set.
func FormatTask(w io.Writer, num int, task service.Task, showID bool) {
	text := normalizeText(task.Text)
	if showID {
		fmt.Fprintf(w, "%4d  %-*s  %s\n", num, ShortIDLength, ShortID(task.ID), text)
		return
	}
	fmt.Fprintf(w, "%4d  %s\n", num, text)
}

// FormatSectionHeader formats a section header such as "Active (2)".
func FormatSectionHeader(w io.Writer, title string, count int) {
	fmt.Fprintln(w, SectionSeparator)
	fmt.Fprintf(w, "%s (%d)\n", title, count)
	fmt.Fprintln(w, SectionSeparator)
}

// FormatCounts formats the counts printed by the stats command.
func FormatCounts(w io.Writer, c service.Counts) {
	fmt.Fprintf(w, "total      %d\n", c.Total)
	fmt.Fprintf(w, "active     %d\n", c.Active)
	fmt.Fprintf(w, "completed  %d\n", c.Completed)
}

// ShortID returns the first ShortIDLength characters of id.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
