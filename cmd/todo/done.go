package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoneCmd(app *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "done <task_id>",
		Short: "Mark a task as complete and remove it",
		Long: `Mark a task as complete by removing it from the backing file.

An unknown id is silently ignored; with --strict it exits with code 4.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIntArg("task_id", args[0])
			if err != nil {
				return err
			}

			s, err := app.openStore()
			if err != nil {
				return err
			}

			removed, err := s.Complete(id)
			if err != nil {
				return exitErrorf(ExitDataError, "completing task: %v", err)
			}

			if app.humanOutput {
				if removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Completed #%d (%d remaining)\n", id, s.Len())
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "No task #%d\n", id)
				}
			}
			if !removed && strict {
				return exitErrorf(ExitNotFound, "task %d not found", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit 4 when the task does not exist")
	return cmd
}
