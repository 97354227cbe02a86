package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mytodo/todo/internal/task"
)

func newFindCmd(app *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Find tasks by substring",
		Long: `Find tasks whose title followed by description contains <query>,
ignoring case.

When nothing matches, prints a single informational record:
  [{"info": "No matching tasks", "query": "<query>"}]
With --strict, prints [] and exits with code 4 instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]

			s, err := app.openStore()
			if err != nil {
				return err
			}

			matches := s.Query(query)
			out := cmd.OutOrStdout()

			if len(matches) == 0 {
				switch {
				case app.humanOutput:
					fmt.Fprintf(out, "No matching tasks for %q\n", query)
				case strict:
					printPretty(out, matches)
				default:
					printPretty(out, []task.NoMatch{task.NewNoMatch(query)})
				}
				if strict {
					return exitSilently(ExitNotFound)
				}
				return nil
			}

			if app.humanOutput {
				printTasksHuman(out, matches)
				return nil
			}
			return printPretty(out, matches)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Print [] and exit 4 when nothing matches")
	return cmd
}
