package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	_ "modernc.org/sqlite"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_id ON tasks(id);

	-- Full-text search over title and description
	CREATE VIRTUAL TABLE IF NOT EXISTS tasks_fts USING fts5(
		id UNINDEXED,
		title,
		description
	);

	CREATE TABLE IF NOT EXISTS _meta (
		key TEXT PRIMARY KEY,
		value TEXT
	);
`

// openDB opens or creates the mirror database and ensures its schema.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

// getStoredHash retrieves the backing file hash from the _meta table.
func getStoredHash(q querier) (string, error) {
	var hash sql.NullString
	err := q.QueryRow("SELECT value FROM _meta WHERE key = 'source_hash'").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}

// setStoredHash stores the backing file hash in the _meta table.
func setStoredHash(e execer, hash string) error {
	_, err := e.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('source_hash', ?)`, hash)
	return err
}

// getLastSyncTime retrieves the last sync time from the _meta table.
func getLastSyncTime(q querier) (time.Time, error) {
	var timeStr sql.NullString
	err := q.QueryRow("SELECT value FROM _meta WHERE key = 'last_sync'").Scan(&timeStr)
	if err == sql.ErrNoRows || (err == nil && !timeStr.Valid) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, timeStr.String)
}

// setLastSyncTime stores the last sync time in the _meta table.
func setLastSyncTime(e execer, t time.Time) error {
	_, err := e.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('last_sync', ?)`,
		t.UTC().Format(time.RFC3339))
	return err
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// PrepareFTSQuery escapes special characters for FTS5 queries.
// Plain words pass through so FTS5 treats them as an implicit AND.
func PrepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	special := strings.IndexFunc(query, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_')
	})
	if special >= 0 {
		// Escape internal quotes and wrap in quotes
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// scanRecords converts SQL rows to records.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
