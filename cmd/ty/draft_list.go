package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your unsubmitted drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		documenter, _ := cmd.Flags().GetString("documenter")
		if documenter == "" {
			documenter = actor
		}

		drafts, err := tallyClient.ListDrafts(context.Background(), documenter)
		if err != nil {
			return fmt.Errorf("listing drafts: %w", err)
		}

		if jsonOutput {
			printJSON(drafts)
			return nil
		}
		printDraftListTable(drafts)
		return nil
	},
}

func init() {
	draftListCmd.Flags().String("documenter", "", "documenter ID (default: --actor)")
}
