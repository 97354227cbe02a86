// Package main provides the todo CLI entry point.
package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mytodo/todo/internal/config"
	"github.com/mytodo/todo/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// A .env file in the working directory may set TODO_DB_FILE and friends.
	_ = godotenv.Load()

	root, app := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(reportError(root.ErrOrStderr(), err, app.humanOutput))
	}
}

// cli holds the persistent flags and shared state of one invocation.
type cli struct {
	humanOutput bool
	dbFile      string
	verbose     bool
	log         *log.Logger
}

func newRootCmd() (*cobra.Command, *cli) {
	app := &cli{log: log.New()}

	root := &cobra.Command{
		Use:   "todo",
		Short: "Single-user task tracker backed by a JSON file",
		Long: `todo keeps a flat list of tasks in a JSON file in the current directory
(task_db.json unless configured otherwise).

Core commands:
  add <title> <description>   Add a task
  find <query>                Case-insensitive substring search
  show <count>                Show the most recent tasks
  done <task_id>              Complete (remove) a task

Output is JSON by default; use --human for readable text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	root.PersistentFlags().BoolVar(&app.humanOutput, "human", false, "Use human-readable output instead of JSON")
	root.PersistentFlags().StringVarP(&app.dbFile, "file", "f", "", "Backing file (default: $TODO_DB_FILE, config db_file, or ./task_db.json)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Log debug details to stderr")

	root.AddCommand(
		newAddCmd(app),
		newFindCmd(app),
		newShowCmd(app),
		newDoneCmd(app),
		newGetCmd(app),
		newCheckCmd(app),
		newConfigCmd(app),
		newIndexCmd(app),
	)

	return root, app
}

// setup configures logging and applies config-file defaults to flags.
func (app *cli) setup(cmd *cobra.Command) error {
	app.log.SetOutput(cmd.ErrOrStderr())
	app.log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	app.log.SetLevel(log.WarnLevel)
	if dbg, err := strconv.ParseBool(os.Getenv(config.EnvDebug)); err == nil && dbg {
		app.log.SetLevel(log.DebugLevel)
	}
	if app.verbose {
		app.log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		return exitErrorf(ExitConfigError, "loading config: %v", err)
	}
	if cfg.Human && !cmd.Flags().Changed("human") {
		app.humanOutput = true
	}
	return nil
}

// dbPath returns the absolute backing file path without touching the file.
func (app *cli) dbPath() (string, error) {
	path, err := filepath.Abs(config.ResolveDBFile(app.dbFile))
	if err != nil {
		return "", exitErrorf(ExitError, "resolving backing file: %v", err)
	}
	return path, nil
}

// openStore opens the task store, creating the backing file if needed.
func (app *cli) openStore() (*storage.Store, error) {
	path, err := app.dbPath()
	if err != nil {
		return nil, err
	}
	s, err := storage.Open(path, storage.WithLogger(app.log))
	if err != nil {
		return nil, exitErrorf(ExitDataError, "opening tasks: %v", err)
	}
	return s, nil
}

// parseIntArg parses a numeric positional argument.
func parseIntArg(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, exitErrorf(ExitError, "invalid %s %q: must be an integer", name, value)
	}
	return n, nil
}
