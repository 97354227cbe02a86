package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mytodo/todo/internal/config"
	"github.com/mytodo/todo/internal/index"
)

// SyncResult is the response for the index sync command.
type SyncResult struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Source string `json:"source"`
	Tasks  int    `json:"tasks"`
}

// maxColumnWidth caps column widths in human table output.
const maxColumnWidth = 40

func newIndexCmd(app *cli) *cobra.Command {
	var indexFile string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the SQLite query index",
		Long: `The index is a disposable SQLite copy of the backing file for SQL and
full-text queries. The backing file stays the source of truth; run
'todo index sync' after changing tasks.

Tables:
  tasks(id, title, description)
  tasks_fts(id, title, description)   FTS5 full-text table`,
	}
	cmd.PersistentFlags().StringVar(&indexFile, "index", "", "Index path (default: $TODO_INDEX_FILE, config index_file, or backing file with .db extension)")

	openIndex := func() (*index.Index, error) {
		dbPath, err := app.dbPath()
		if err != nil {
			return nil, err
		}
		return index.New(config.ResolveIndexFile(indexFile, dbPath), dbPath, app.log), nil
	}

	cmd.AddCommand(
		newIndexSyncCmd(app, openIndex),
		newIndexStatusCmd(app, openIndex),
		newIndexQueryCmd(app, openIndex),
		newIndexSearchCmd(app, openIndex),
	)
	return cmd
}

func newIndexSyncCmd(app *cli, openIndex func() (*index.Index, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the index from the backing file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openStore()
			if err != nil {
				return err
			}
			ix, err := openIndex()
			if err != nil {
				return err
			}

			n, err := ix.Sync(s.Tasks())
			if err != nil {
				return exitErrorf(ExitDataError, "syncing index: %v", err)
			}

			if app.humanOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d tasks from %s into %s\n", n, s.Path(), ix.Path())
				return nil
			}
			return printPretty(cmd.OutOrStdout(), SyncResult{
				Status: "synced",
				Path:   ix.Path(),
				Source: s.Path(),
				Tasks:  n,
			})
		},
	}
}

func newIndexStatusCmd(app *cli, openIndex func() (*index.Index, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the index matches the backing file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := openIndex()
			if err != nil {
				return err
			}
			info, err := ix.Info()
			if err != nil {
				return exitErrorf(ExitDataError, "reading index: %v", err)
			}

			if !app.humanOutput {
				return printPretty(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "index:   %s\n", info.Path)
			fmt.Fprintf(out, "source:  %s\n", info.SourcePath)
			if !info.Exists {
				fmt.Fprintln(out, "status:  missing (run 'todo index sync')")
				return nil
			}
			status := "in sync"
			if !info.InSync {
				status = "stale (run 'todo index sync')"
			}
			fmt.Fprintf(out, "status:  %s\n", status)
			fmt.Fprintf(out, "tasks:   %d\n", info.Tasks)
			if !info.LastSync.IsZero() {
				fmt.Fprintf(out, "synced:  %s\n", info.LastSync.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newIndexQueryCmd(app *cli, openIndex func() (*index.Index, error)) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL query against the index",
		Long: `Run a read-only SQL query against the index.

Examples:
  todo index query "SELECT id, title FROM tasks WHERE description = ''"
  todo index query "SELECT COUNT(*) AS n FROM tasks" --csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := openIndex()
			if err != nil {
				return err
			}

			records, err := ix.Query(args[0])
			if err != nil {
				return indexError(err)
			}

			out := cmd.OutOrStdout()
			switch {
			case asCSV:
				return outputCSV(out, records)
			case app.humanOutput:
				outputTable(out, records)
				return nil
			default:
				return printPretty(out, records)
			}
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "Output CSV")
	return cmd
}

func newIndexSearchCmd(app *cli, openIndex func() (*index.Index, error)) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <terms>",
		Short: "Full-text search over titles and descriptions",
		Long: `Full-text search using the index, best match first.

Unlike 'todo find', terms match whole words in any order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := openIndex()
			if err != nil {
				return err
			}

			results, err := ix.Search(args[0], limit)
			if err != nil {
				return indexError(err)
			}

			if app.humanOutput {
				printTasksHuman(cmd.OutOrStdout(), results)
				return nil
			}
			return printPretty(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum results (0 for no limit)")
	return cmd
}

// indexError maps index failures to exit codes.
func indexError(err error) error {
	if errors.Is(err, index.ErrStale) {
		return exitErrorf(ExitIndexStale, "index is out of date, run 'todo index sync'")
	}
	return exitErrorf(ExitError, "SQL error: %v", err)
}

// recordColumns returns the column names of records in sorted order.
func recordColumns(records []index.Record) []string {
	if len(records) == 0 {
		return nil
	}
	cols := make([]string, 0, len(records[0]))
	for col := range records[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// outputCSV writes records as CSV with a header row.
func outputCSV(w io.Writer, records []index.Record) error {
	cols := recordColumns(records)
	if cols == nil {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, record := range records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = formatValue(record[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// outputTable writes records as a formatted table.
func outputTable(w io.Writer, records []index.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}
	cols := recordColumns(records)

	// Calculate column widths
	widths := make(map[string]int)
	for _, col := range cols {
		widths[col] = len(col)
	}
	for _, record := range records {
		for _, col := range cols {
			if n := len([]rune(formatValue(record[col]))); n > widths[col] {
				widths[col] = n
			}
		}
	}
	for col := range widths {
		if widths[col] > maxColumnWidth {
			widths[col] = maxColumnWidth
		}
	}

	var header []string
	for _, col := range cols {
		header = append(header, padRight(strings.ToUpper(col), widths[col]))
	}
	fmt.Fprintln(w, strings.Join(header, "  "))

	for _, record := range records {
		var row []string
		for _, col := range cols {
			row = append(row, padRight(truncateString(formatValue(record[col]), widths[col]), widths[col]))
		}
		fmt.Fprintln(w, strings.Join(row, "  "))
	}

	fmt.Fprintf(w, "(%d rows)\n", len(records))
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
