package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/tally/internal/client"
	"github.com/spf13/cobra"
)

var goalCreateCmd = &cobra.Command{
	Use:   "create <employee-id> <title>",
	Short: "Create a goal with its task-analysis steps",
	Long: `Create a goal. Each --step adds a required step in order; --optional-step
adds a step that does not count toward mastery.

Examples:
  ty goal create emp-7f2 "Ties shoes independently" \
    --step="Crosses laces" --step="Makes first loop" --optional-step="Double knots"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		required, _ := cmd.Flags().GetStringArray("step")
		optional, _ := cmd.Flags().GetStringArray("optional-step")

		if len(required)+len(optional) == 0 {
			fmt.Fprintln(os.Stderr, "Error: at least one --step or --optional-step is required")
			os.Exit(1)
		}

		var steps []client.CreateGoalStepRequest
		for _, desc := range required {
			steps = append(steps, client.CreateGoalStepRequest{Description: desc, IsRequired: true})
		}
		for _, desc := range optional {
			steps = append(steps, client.CreateGoalStepRequest{Description: desc})
		}

		goal, err := tallyClient.CreateGoal(context.Background(), &client.CreateGoalRequest{
			EmployeeID: args[0],
			Title:      args[1],
			Steps:      steps,
			Actor:      actor,
		})
		if err != nil {
			return fmt.Errorf("creating goal: %w", err)
		}

		if jsonOutput {
			printJSON(goal)
		} else {
			fmt.Printf("Goal created: %s\n", goal.ID)
			printGoalTable(goal)
		}
		return nil
	},
}

func init() {
	goalCreateCmd.Flags().StringArray("step", nil, "required step description (repeatable, in order)")
	goalCreateCmd.Flags().StringArray("optional-step", nil, "optional step description (repeatable)")
}
