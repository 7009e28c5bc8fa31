package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:     "records <employee-id>",
	Short:   "List an employee's committed progress records",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := tallyClient.ListEmployeeRecords(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing records for %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(records)
			return nil
		}
		printRecordListTable(records)
		return nil
	},
}
