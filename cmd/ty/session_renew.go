package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionRenewCmd = &cobra.Command{
	Use:   "renew <session-id>",
	Short: "Extend a session's lease",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetString("ttl")

		session, err := tallyClient.RenewSession(context.Background(), args[0], actor, ttl)
		if err != nil {
			return fmt.Errorf("renewing session %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(session)
		} else {
			fmt.Printf("Session renewed: %s\n", session.ID)
			fmt.Printf("  Lease: %s\n", formatExpiry(session.LeaseExpiresAt))
		}
		return nil
	},
}

func init() {
	sessionRenewCmd.Flags().String("ttl", "", "new lease duration from now (default: server default, max 12h)")
}
