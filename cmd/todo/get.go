package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <task_id>",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIntArg("task_id", args[0])
			if err != nil {
				return err
			}

			s, err := app.openStore()
			if err != nil {
				return err
			}

			t, ok := s.Get(id)
			if !ok {
				return exitErrorf(ExitNotFound, "task %d not found", id)
			}

			if app.humanOutput {
				fmt.Fprint(cmd.OutOrStdout(), formatTaskHuman(t))
				return nil
			}
			return printPretty(cmd.OutOrStdout(), t)
		},
	}
}
