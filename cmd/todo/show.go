package main

import (
	"github.com/spf13/cobra"
)

func newShowCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <count>",
		Short: "Show the most recent tasks",
		Long: `Show up to <count> tasks, most recently added first.

Asking for more tasks than exist shows all of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseIntArg("count", args[0])
			if err != nil {
				return err
			}

			s, err := app.openStore()
			if err != nil {
				return err
			}

			tasks := s.Head(count)
			if app.humanOutput {
				printTasksHuman(cmd.OutOrStdout(), tasks)
				return nil
			}
			return printPretty(cmd.OutOrStdout(), tasks)
		},
	}
}
