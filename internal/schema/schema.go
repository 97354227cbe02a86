// Package schema validates task backing files against the embedded JSON
// Schema and the collection invariants the store relies on.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mytodo/todo/internal/storage"
	"github.com/mytodo/todo/internal/task"
)

//go:embed tasks.schema.json
var tasksSchema string

const schemaURL = "https://todo.local/schemas/tasks.json"

// Issue types reported by Check.
const (
	IssueMissingFile = "missing_file"
	IssueInvalidJSON = "invalid_json"
	IssueSchema      = "schema"
	IssueDuplicateID = "duplicate_id"
	IssueUnsorted    = "unsorted"
)

// Severity levels. Only errors make a file invalid.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is a single problem found in a backing file.
type Issue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Path     string `json:"path,omitempty"` // Location inside the document, e.g. [2].id
	Message  string `json:"message"`
	IDs      []int  `json:"ids,omitempty"`
}

// Report is the result of checking one backing file.
type Report struct {
	File   string  `json:"file"`
	Tasks  int     `json:"tasks"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

func (r *Report) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == SeverityError {
		r.Valid = false
	}
}

// compile builds the embedded schema.
func compile() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(tasksSchema)); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Check validates the backing file at path.
//
// A missing file is reported as a warning since the store creates it on
// first use; an empty file counts as zero tasks for the same reason.
func Check(path string) (*Report, error) {
	report := &Report{File: path, Valid: true, Issues: []Issue{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			report.add(Issue{
				Type:     IssueMissingFile,
				Severity: SeverityWarning,
				Message:  "backing file does not exist yet",
			})
			return report, nil
		}
		return nil, fmt.Errorf("reading tasks file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return report, nil
	}

	return checkData(report, data)
}

func checkData(report *Report, data []byte) (*Report, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		report.add(Issue{
			Type:     IssueInvalidJSON,
			Severity: SeverityError,
			Message:  err.Error(),
		})
		return report, nil
	}

	schema, err := compile()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		appendSchemaIssues(report, err)
		return report, nil
	}

	tasks, err := storage.DecodeTasks(data)
	if err != nil {
		// Schema passed, so only ids like 1.0 or beyond the int range land here.
		report.add(Issue{
			Type:     IssueInvalidJSON,
			Severity: SeverityError,
			Message:  err.Error(),
		})
		return report, nil
	}
	report.Tasks = len(tasks)

	if dups := task.DuplicateIDs(tasks); len(dups) > 0 {
		report.add(Issue{
			Type:     IssueDuplicateID,
			Severity: SeverityError,
			Message:  "task ids must be unique",
			IDs:      dups,
		})
	}

	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID < tasks[i].ID {
			report.add(Issue{
				Type:     IssueUnsorted,
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("[%d]", i),
				Message:  "tasks are not in descending id order; the next write will reorder them",
			})
			break
		}
	}

	return report, nil
}

func appendSchemaIssues(report *Report, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		report.add(Issue{Type: IssueSchema, Severity: SeverityError, Message: err.Error()})
		return
	}
	collectSchemaIssues(report, ve)
}

func collectSchemaIssues(report *Report, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		report.add(Issue{
			Type:     IssueSchema,
			Severity: SeverityError,
			Path:     jsonPointerToPath(err.InstanceLocation),
			Message:  err.Message,
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaIssues(report, cause)
	}
}

// jsonPointerToPath renders a JSON pointer such as /2/id as [2].id.
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var sb strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
