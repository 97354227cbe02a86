package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <description>",
		Short: "Add a new task",
		Long: `Add a new task and write the backing file.

The task gets the next free id: 1 for an empty list, otherwise one more
than the largest id. Prints nothing unless --human is set.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openStore()
			if err != nil {
				return err
			}

			added, err := s.Add(args[0], args[1])
			if err != nil {
				return exitErrorf(ExitDataError, "adding task: %v", err)
			}

			if app.humanOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", added.ID, added.Title)
			}
			return nil
		},
	}
}
