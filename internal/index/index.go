// Package index maintains a disposable SQLite mirror of the task backing
// file for ad-hoc SQL and full-text queries. The backing file stays the
// source of truth; the mirror is rebuilt from it on demand.
package index

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mytodo/todo/internal/storage"
	"github.com/mytodo/todo/internal/task"
)

// ErrStale is returned by queries when the mirror no longer matches the
// backing file.
var ErrStale = errors.New("index is out of date")

// Record is one result row keyed by column name.
type Record map[string]any

// Index is a SQLite mirror of one backing file.
type Index struct {
	path       string
	sourcePath string
	log        logrus.FieldLogger
}

// Info describes the state of the mirror.
type Info struct {
	Path       string    `json:"path"`
	SourcePath string    `json:"source_path"`
	Exists     bool      `json:"exists"`
	Tasks      int       `json:"tasks"`
	Size       int64     `json:"size"`
	LastSync   time.Time `json:"last_sync,omitzero"`
	InSync     bool      `json:"in_sync"`
}

// New returns the mirror at path for the backing file at sourcePath.
// Nothing is opened until an operation needs the database.
func New(path, sourcePath string, log logrus.FieldLogger) *Index {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Index{
		path:       path,
		sourcePath: sourcePath,
		log:        log.WithField("index", path),
	}
}

// Path returns the mirror database path.
func (ix *Index) Path() string {
	return ix.path
}

// NeedsSync reports whether the mirror must be rebuilt: it is missing or
// its stored hash differs from the backing file's current hash.
func (ix *Index) NeedsSync() (bool, error) {
	if _, err := os.Stat(ix.path); os.IsNotExist(err) {
		return true, nil
	}

	currentHash, err := storage.ComputeHash(ix.sourcePath)
	if err != nil {
		return true, err
	}

	db, err := openDB(ix.path)
	if err != nil {
		return true, err
	}
	defer db.Close()

	storedHash, err := getStoredHash(db)
	if err != nil {
		return true, err
	}

	return currentHash != storedHash, nil
}

// Sync rebuilds the mirror from tasks, recording the hash of the backing
// file so later queries can detect staleness. Returns the number of tasks
// written.
func (ix *Index) Sync(tasks []task.Task) (int, error) {
	hash, err := storage.ComputeHash(ix.sourcePath)
	if err != nil {
		return 0, fmt.Errorf("computing hash: %w", err)
	}

	db, err := openDB(ix.path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return 0, fmt.Errorf("clearing tasks table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM tasks_fts"); err != nil {
		return 0, fmt.Errorf("clearing tasks_fts table: %w", err)
	}

	taskStmt, err := tx.Prepare("INSERT INTO tasks (id, title, description) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing tasks insert: %w", err)
	}
	defer taskStmt.Close()

	ftsStmt, err := tx.Prepare("INSERT INTO tasks_fts (id, title, description) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, t := range tasks {
		if _, err := taskStmt.Exec(t.ID, t.Title, t.Description); err != nil {
			return 0, fmt.Errorf("inserting task %d: %w", i+1, err)
		}
		if _, err := ftsStmt.Exec(t.ID, t.Title, t.Description); err != nil {
			return 0, fmt.Errorf("inserting fts row %d: %w", i+1, err)
		}
	}

	if err := setStoredHash(tx, hash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := setLastSyncTime(tx, time.Now()); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	ix.log.WithField("tasks", len(tasks)).Debug("index synced")
	return len(tasks), nil
}

// Query runs a read-only SQL statement against the mirror.
// Returns ErrStale if the mirror does not match the backing file.
func (ix *Index) Query(sqlText string) ([]Record, error) {
	if err := ix.ensureFresh(); err != nil {
		return nil, err
	}

	db, err := openDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("enabling read-only mode: %w", err)
	}

	rows, err := db.Query(sqlText)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search runs a full-text query over titles and descriptions, best match
// first. Returns ErrStale if the mirror does not match the backing file.
func (ix *Index) Search(text string, limit int) ([]task.Task, error) {
	if err := ix.ensureFresh(); err != nil {
		return nil, err
	}

	ftsQuery := PrepareFTSQuery(text)
	if ftsQuery == "" {
		return []task.Task{}, nil
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	db, err := openDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT id, title, description
		FROM tasks_fts
		WHERE tasks_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	results := []task.Task{}
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// Info reports where the mirror lives and whether it is current.
func (ix *Index) Info() (*Info, error) {
	info := &Info{
		Path:       ix.path,
		SourcePath: ix.sourcePath,
	}

	stat, err := os.Stat(ix.path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checking index: %w", err)
	}
	info.Exists = true
	info.Size = stat.Size()

	needsSync, err := ix.NeedsSync()
	if err != nil {
		return nil, fmt.Errorf("checking sync status: %w", err)
	}
	info.InSync = !needsSync

	db, err := openDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&info.Tasks); err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	lastSync, err := getLastSyncTime(db)
	if err != nil {
		return nil, fmt.Errorf("reading sync time: %w", err)
	}
	info.LastSync = lastSync

	return info, nil
}

func (ix *Index) ensureFresh() error {
	needsSync, err := ix.NeedsSync()
	if err != nil {
		return fmt.Errorf("checking sync status: %w", err)
	}
	if needsSync {
		return ErrStale
	}
	return nil
}
