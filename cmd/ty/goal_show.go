package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var goalShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal with its steps and mastery state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := tallyClient.GetGoal(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("getting goal %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(goal)
			return nil
		}
		printGoalTable(goal)
		return nil
	},
}
