package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var goalArchiveCmd = &cobra.Command{
	Use:   "archive <goal-id>",
	Short: "Archive a goal, excluding it from future evaluation",
	Long: `Archive a goal. Archived goals keep their history but are skipped by
mastery evaluation and cannot be reactivated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := tallyClient.ArchiveGoal(context.Background(), args[0], actor)
		if err != nil {
			return fmt.Errorf("archiving goal %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(goal)
		} else {
			fmt.Printf("Goal archived: %s (%s)\n", goal.ID, goal.Title)
		}
		return nil
	},
}
