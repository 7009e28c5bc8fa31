package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/tally/internal/client"
	"github.com/spf13/cobra"
)

var draftDiscardCmd = &cobra.Command{
	Use:   "discard <employee-id> <goal-step-id>",
	Short: "Discard a draft without committing it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")

		err := tallyClient.DiscardDraft(context.Background(), &client.DiscardDraftRequest{
			DocumenterID: actor,
			EmployeeID:   args[0],
			GoalStepID:   args[1],
			RecordDate:   date,
		})
		if err != nil {
			return fmt.Errorf("discarding draft: %w", err)
		}

		fmt.Printf("Draft discarded: %s / %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	draftDiscardCmd.Flags().String("date", "", "record date YYYY-MM-DD (default: today UTC)")
}
