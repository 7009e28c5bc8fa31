package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var goalListCmd = &cobra.Command{
	Use:   "list <employee-id>",
	Short: "List an employee's goals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goals, err := tallyClient.ListGoals(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing goals for %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(goals)
			return nil
		}
		printGoalListTable(goals)
		return nil
	},
}
