// Package task defines the core domain types for tracked tasks.
package task

import (
	"sort"
	"strings"
)

// Task is a single tracked work item.
// Field order matches the key order written to the backing file.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ID          int    `json:"id"`
}

// NoMatch is the informational record reported when a search finds nothing.
type NoMatch struct {
	Info  string `json:"info"`
	Query string `json:"query"`
}

// NoMatchInfo is the message carried by NoMatch records.
const NoMatchInfo = "No matching tasks"

// NewNoMatch builds the informational record for an unmatched query.
func NewNoMatch(query string) NoMatch {
	return NoMatch{Info: NoMatchInfo, Query: query}
}

// Matches reports whether query occurs, ignoring case, anywhere in the
// title immediately followed by the description.
// A match may span the boundary between the two fields.
func (t Task) Matches(query string) bool {
	haystack := strings.ToLower(t.Title + t.Description)
	return strings.Contains(haystack, strings.ToLower(query))
}

// SortByIDDesc sorts tasks in place, highest id first.
func SortByIDDesc(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ID > tasks[j].ID
	})
}

// MaxID returns the largest id in tasks, or 0 for an empty slice.
func MaxID(tasks []Task) int {
	highest := 0
	for _, t := range tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}

// FindByID searches for a task by id.
func FindByID(tasks []Task, id int) (int, bool) {
	for i, t := range tasks {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// DuplicateIDs returns the ids that appear more than once, in ascending order.
func DuplicateIDs(tasks []Task) []int {
	seen := make(map[int]int)
	for _, t := range tasks {
		seen[t.ID]++
	}

	var dups []int
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Ints(dups)
	return dups
}
