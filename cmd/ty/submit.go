package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/alfredjeanlab/tally/internal/client"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:     "submit <session-id> <employee-id>",
	Short:   "Commit your drafts for an employee and date",
	GroupID: "records",
	Long: `Atomically commit all of your drafts for the employee and date into
authoritative progress records, then re-evaluate the employee's goals.
The session must hold a live lease on the employee.

Resubmitting the same day replaces the earlier records and recomputes
mastery from the final record set.

Examples:
  ty submit sn-x7k emp-7f2
  ty submit sn-x7k emp-7f2 --summary="Strong morning, tired after lunch"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		summary, _ := cmd.Flags().GetString("summary")

		resp, err := tallyClient.Submit(context.Background(), &client.SubmitRequest{
			SessionID:    args[0],
			EmployeeID:   args[1],
			DocumenterID: actor,
			RecordDate:   date,
			Summary:      summary,
		})
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && len(apiErr.Fields) > 0 {
				fmt.Fprintf(os.Stderr, "Error: %s\n", apiErr.Message)
				for _, f := range apiErr.Fields {
					fmt.Fprintf(os.Stderr, "  %s\n", f)
				}
				os.Exit(1)
			}
			return err
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		fmt.Printf("Submitted %d records for %s\n", len(resp.Records), args[1])
		for _, g := range resp.MasteredGoals {
			fmt.Printf("  Goal mastered: %s (%s)\n", g.Title, g.ID)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().String("date", "", "record date YYYY-MM-DD (default: today UTC)")
	submitCmd.Flags().StringP("summary", "s", "", "free-text assessment summary for the session")
}
