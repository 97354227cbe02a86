package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytodo/todo/internal/config"
)

// ConfigResponse is the response for the config command without arguments.
type ConfigResponse struct {
	Path      string `json:"path"`
	DBFile    string `json:"db_file"`
	IndexFile string `json:"index_file"`
	Human     bool   `json:"human"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func newConfigCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "config [key] [value]",
		Short: "Get or set global configuration values",
		Long: `Get or set values in the global config file
($XDG_CONFIG_HOME/todo/config.yml, or ~/.config/todo/config.yml).

Usage:
  todo config                          # Show all config
  todo config db-file                  # Get specific value
  todo config db-file ~/tasks.json     # Set value

Keys:
  db-file      Backing file (relative paths resolve against the working directory)
  index-file   SQLite index path (default: backing file with .db extension)
  human        Default to human-readable output (true/false)`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGlobalConfig()
			if err != nil {
				return exitErrorf(ExitConfigError, "loading config: %v", err)
			}
			out := cmd.OutOrStdout()

			// No args: show all config
			if len(args) == 0 {
				if app.humanOutput {
					fmt.Fprintf(out, "config:      %s\n", config.GlobalConfigPath())
					fmt.Fprintf(out, "db-file:     %s\n", cfg.DBFile)
					fmt.Fprintf(out, "index-file:  %s\n", cfg.IndexFile)
					fmt.Fprintf(out, "human:       %t\n", cfg.Human)
					return nil
				}
				return printPretty(out, ConfigResponse{
					Path:      config.GlobalConfigPath(),
					DBFile:    cfg.DBFile,
					IndexFile: cfg.IndexFile,
					Human:     cfg.Human,
				})
			}

			key := args[0]

			// One arg: get specific value
			if len(args) == 1 {
				value, err := cfg.Get(key)
				if err != nil {
					return exitErrorf(ExitError, "%v", err)
				}
				if app.humanOutput {
					fmt.Fprintln(out, value)
					return nil
				}
				return printPretty(out, map[string]string{key: value})
			}

			// Two args: set value
			updated := *cfg
			if err := updated.Set(key, args[1]); err != nil {
				return exitErrorf(ExitError, "%v", err)
			}
			if err := updated.Save(); err != nil {
				return exitErrorf(ExitConfigError, "saving config: %v", err)
			}
			value, _ := updated.Get(key)

			if app.humanOutput {
				fmt.Fprintf(out, "Set %s = %s\n", key, value)
				return nil
			}
			return printPretty(out, UpdateResponse{Status: "updated", Key: key, Value: value})
		},
	}
}
