package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var locksCmd = &cobra.Command{
	Use:     "locks <employee-id>...",
	Short:   "Check which employees are currently leased",
	GroupID: "sessions",
	Long: `Report the current lease holder for each employee. This is an advisory
snapshot; another documenter can take a lease the moment after it prints.
Only starting a session actually reserves employees.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := tallyClient.CheckLocks(context.Background(), args)
		if err != nil {
			return fmt.Errorf("checking locks: %w", err)
		}

		if jsonOutput {
			printJSON(status)
			return nil
		}

		for _, h := range status.Locked {
			fmt.Printf("HELD       %s  by %s (session %s)\n", h.EmployeeID, h.HolderID, h.SessionID)
		}
		for _, id := range status.Available {
			fmt.Printf("AVAILABLE  %s\n", id)
		}
		fmt.Printf("\n%d held, %d available\n", len(status.Locked), len(status.Available))
		return nil
	},
}
