package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mytodo/todo/internal/storage"
	"github.com/mytodo/todo/internal/task"
)

// Indent used for console JSON output.
const prettyIndent = "    "

// printPretty writes v as indented JSON with object keys sorted
// alphabetically and non-ASCII characters emitted literally.
func printPretty(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	// Round-trip through generic values: maps encode with sorted keys.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", prettyIndent)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = w.Write(storage.LiteralSeparators(buf.Bytes()))
	return err
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// exitCode maps an error returned from Execute to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// reportError writes err to w in the requested format and returns its exit code.
func reportError(w io.Writer, err error, human bool) int {
	code := exitCode(err)
	msg := err.Error()
	if msg == "" {
		return code
	}
	if human {
		fmt.Fprintf(w, "error: %s\n", msg)
	} else {
		printPretty(w, ErrorResponse{Error: msg})
	}
	return code
}

// printTasksHuman prints tasks as "#id title" with the description indented below.
func printTasksHuman(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	for _, t := range tasks {
		fmt.Fprint(w, formatTaskHuman(t))
	}
}

// formatTaskHuman formats a single task for human-readable output.
func formatTaskHuman(t task.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#%d %s\n", t.ID, t.Title))
	if t.Description != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", wrapText(t.Description, TextWrapWidth, "    ")))
	}
	return sb.String()
}

// TextWrapWidth is the wrap width for descriptions in human output.
const TextWrapWidth = 72

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// padRight pads a string with spaces on the right.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
