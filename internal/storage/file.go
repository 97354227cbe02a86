// Package storage handles persistence of the task collection in its JSON
// backing file.
package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mytodo/todo/internal/task"
)

// Indent is the per-level indentation used in the backing file.
const Indent = "    "

// DecodeTasks parses the contents of a backing file.
// A JSON null decodes to an empty, non-nil slice.
func DecodeTasks(data []byte) ([]task.Task, error) {
	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// EncodeTasks serializes tasks the way they are stored on disk: an indented
// JSON array with non-ASCII and HTML characters emitted literally and no
// trailing newline.
func EncodeTasks(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}

	return LiteralSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// LiteralSeparators rewrites the \u2028 and \u2029 escapes that
// encoding/json always emits into raw UTF-8, so every non-ASCII character
// in the output is literal. data must be encoder output: an escaped
// backslash (\\) is copied through untouched, so a stored "\\u2028" stays
// text.
func LiteralSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == '\\' {
			out = append(out, '\\', '\\')
			i++
			continue
		}
		if i+5 < len(data) && bytes.Equal(data[i+1:i+5], []byte("u202")) {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

// WriteAll writes all tasks to a backing file atomically.
// Uses temp file + rename so an interrupted write never truncates the target.
func WriteAll(path string, tasks []task.Task) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path with data via a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	// Create temp file in same directory for atomic rename
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting temp file mode: %w", err)
	}

	// Close and sync
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// ComputeHash computes a SHA256 hash of a file's contents.
// A missing file hashes as empty content.
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256([]byte{})
			return hex.EncodeToString(h[:]), nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
