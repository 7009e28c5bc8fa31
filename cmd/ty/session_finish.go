package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionFinishCmd = &cobra.Command{
	Use:   "finish <session-id>",
	Short: "Complete a session, releasing all leases",
	Long: `Complete a session. All of its employee leases are released and the
session becomes read-only. Finishing an already-finished session is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := tallyClient.CompleteSession(context.Background(), args[0], actor)
		if err != nil {
			return fmt.Errorf("completing session %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(session)
		} else {
			fmt.Printf("Session %s: %s\n", session.ID, session.Status)
		}
		return nil
	},
}
