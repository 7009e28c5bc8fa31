package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/alfredjeanlab/tally/internal/client"
	"github.com/spf13/cobra"
)

var sessionSubjectsCmd = &cobra.Command{
	Use:   "subjects <session-id>",
	Short: "Add or remove employees from a running session",
	Long: `Apply a delta to a session's subject set. Added employees are leased
atomically; if any is held elsewhere, the whole change is rejected.

Examples:
  ty session subjects sn-x7k --add=emp-a81
  ty session subjects sn-x7k --add=emp-a81,emp-b02 --remove=emp-7f2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		add, _ := cmd.Flags().GetStringSlice("add")
		remove, _ := cmd.Flags().GetStringSlice("remove")

		if len(add) == 0 && len(remove) == 0 {
			fmt.Fprintln(os.Stderr, "Error: at least one of --add or --remove is required")
			os.Exit(1)
		}

		session, err := tallyClient.ModifySubjects(context.Background(), args[0], &client.ModifySubjectsRequest{
			Add:    add,
			Remove: remove,
			Actor:  actor,
		})
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
				fmt.Fprintf(os.Stderr, "Error: %v\n", apiErr)
				for _, h := range apiErr.Held {
					fmt.Fprintf(os.Stderr, "  %s held by %s (session %s)\n", h.EmployeeID, h.HolderID, h.SessionID)
				}
				os.Exit(1)
			}
			return err
		}

		if jsonOutput {
			printJSON(session)
		} else {
			fmt.Printf("Session %s subjects: %s\n", session.ID, strings.Join(session.EmployeeIDs, ", "))
		}
		return nil
	},
}

func init() {
	sessionSubjectsCmd.Flags().StringSlice("add", nil, "employee IDs to lease and add")
	sessionSubjectsCmd.Flags().StringSlice("remove", nil, "employee IDs to release and remove")
}
