package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytodo/todo/internal/schema"
)

func newCheckCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify backing file integrity",
		Long: `Validate the backing file against the task schema and check that
task ids are unique and in descending order.

Exits with code 3 if any error-level issue is found. The file is never
modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.dbPath()
			if err != nil {
				return err
			}

			report, err := schema.Check(path)
			if err != nil {
				return exitErrorf(ExitDataError, "checking tasks: %v", err)
			}
			app.log.WithField("path", path).WithField("issues", len(report.Issues)).Debug("check finished")

			out := cmd.OutOrStdout()
			if app.humanOutput {
				if len(report.Issues) == 0 {
					fmt.Fprintf(out, "%s: OK (%d tasks)\n", report.File, report.Tasks)
				}
				for _, issue := range report.Issues {
					loc := ""
					if issue.Path != "" {
						loc = " at " + issue.Path
					}
					fmt.Fprintf(out, "%s: %s%s: %s", issue.Severity, issue.Type, loc, issue.Message)
					if len(issue.IDs) > 0 {
						fmt.Fprintf(out, " %v", issue.IDs)
					}
					fmt.Fprintln(out)
				}
			} else if err := printPretty(out, report); err != nil {
				return err
			}

			if !report.Valid {
				return exitSilently(ExitDataError)
			}
			return nil
		},
	}
}
