package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mytodo/todo/internal/task"
)

// DefaultFileName is the backing file name used when none is configured.
const DefaultFileName = "task_db.json"

// ErrIDsExhausted is returned by Add when the largest id is already math.MaxInt.
var ErrIDsExhausted = errors.New("no task id left: largest id is already the maximum")

// Store owns the in-memory task collection and its backing file.
// Every mutation is written through to disk before returning.
//
// Store does no locking: two processes mutating the same file race and
// the last completed write wins.
type Store struct {
	path  string
	tasks []task.Task
	log   logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persist events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open loads the store backed by path. Relative paths resolve against the
// current working directory.
//
// A missing file is created empty. A file that does not parse as a task
// array yields an empty collection and is left untouched until the next
// write. I/O failures are returned.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	s := &Store{
		path: abs,
		log:  discardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("path", abs)

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading tasks file: %w", err)
		}
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("creating tasks file: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("creating tasks file: %w", err)
		}
		s.log.Debug("created empty tasks file")
		s.tasks = []task.Task{}
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.tasks = []task.Task{}
		return nil
	}

	tasks, err := DecodeTasks(data)
	if err != nil {
		s.log.WithError(err).Debug("tasks file is not a task array, starting empty")
		s.tasks = []task.Task{}
		return nil
	}

	s.tasks = tasks
	s.log.WithField("tasks", len(tasks)).Debug("loaded tasks")
	return nil
}

// Path returns the absolute path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks in the collection.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the collection in its current order.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// NextID returns the id the next added task will receive:
// 1 for an empty collection, otherwise one more than the largest id.
func (s *Store) NextID() int {
	return task.MaxID(s.tasks) + 1
}

// Add appends a new task and persists the collection.
// The collection is left unchanged if no id above the current maximum exists.
func (s *Store) Add(title, description string) (task.Task, error) {
	if task.MaxID(s.tasks) == math.MaxInt {
		return task.Task{}, ErrIDsExhausted
	}
	t := task.Task{
		Title:       title,
		Description: description,
		ID:          s.NextID(),
	}
	s.tasks = append(s.tasks, t)
	if err := s.persist(); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Query returns every task whose title+description contains substr,
// ignoring case, in collection order. No match yields an empty slice.
func (s *Store) Query(substr string) []task.Task {
	matches := []task.Task{}
	for _, t := range s.tasks {
		if t.Matches(substr) {
			matches = append(matches, t)
		}
	}
	return matches
}

// Get returns the task with the given id.
func (s *Store) Get(id int) (task.Task, bool) {
	i, ok := task.FindByID(s.tasks, id)
	if !ok {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

// Complete removes the task with the given id and persists the collection.
// An unknown id is a no-op: it reports false and leaves the file alone.
func (s *Store) Complete(id int) (bool, error) {
	i, ok := task.FindByID(s.tasks, id)
	if !ok {
		s.log.WithField("id", id).Debug("no task to complete")
		return false, nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// Head returns the first count tasks, most recently added first.
// count is clamped to the collection size; count <= 0 yields no tasks.
func (s *Store) Head(count int) []task.Task {
	if count <= 0 {
		return []task.Task{}
	}
	if count > len(s.tasks) {
		count = len(s.tasks)
	}
	out := make([]task.Task, count)
	copy(out, s.tasks[:count])
	return out
}

// persist sorts the collection by descending id and rewrites the backing file.
func (s *Store) persist() error {
	task.SortByIDDesc(s.tasks)
	if err := WriteAll(s.path, s.tasks); err != nil {
		return fmt.Errorf("writing tasks file: %w", err)
	}
	s.log.WithField("tasks", len(s.tasks)).Debug("persisted tasks")
	return nil
}
