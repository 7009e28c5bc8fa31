package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/tally/internal/client"
	"github.com/spf13/cobra"
)

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, _ := cmd.Flags().GetString("holder")
		employee, _ := cmd.Flags().GetString("employee")
		all, _ := cmd.Flags().GetBool("all")
		mine, _ := cmd.Flags().GetBool("mine")
		limit, _ := cmd.Flags().GetInt("limit")

		if mine {
			holder = actor
		}

		statuses := []string{"in_progress"}
		if all {
			statuses = nil
		}

		sessions, err := tallyClient.ListSessions(context.Background(), &client.ListSessionsRequest{
			HolderID:   holder,
			EmployeeID: employee,
			Status:     statuses,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if jsonOutput {
			printJSON(sessions)
			return nil
		}
		printSessionListTable(sessions)
		return nil
	},
}

func init() {
	sessionListCmd.Flags().String("holder", "", "filter by holder documenter ID")
	sessionListCmd.Flags().String("employee", "", "filter by leased employee ID")
	sessionListCmd.Flags().BoolP("all", "a", false, "include completed and abandoned sessions")
	sessionListCmd.Flags().Bool("mine", false, "only sessions held by --actor")
	sessionListCmd.Flags().Int("limit", 50, "maximum sessions to return")
}
