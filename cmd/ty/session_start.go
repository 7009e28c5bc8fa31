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

var sessionStartCmd = &cobra.Command{
	Use:   "start <employee-id>...",
	Short: "Start a session, leasing every listed employee",
	Long: `Start a session holding exclusive leases on the listed employees.

Acquisition is all-or-nothing: if any employee is already held by another
live session, nothing is leased and the holders are printed.

Examples:
  ty session start emp-7f2 emp-a81 --location="Room 4" --ttl=2h
  ty session start emp-7f2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location, _ := cmd.Flags().GetString("location")
		ttl, _ := cmd.Flags().GetString("ttl")

		session, err := tallyClient.AcquireSession(context.Background(), &client.AcquireSessionRequest{
			HolderID:    actor,
			EmployeeIDs: args,
			Location:    location,
			TTL:         ttl,
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
			fmt.Printf("Session started: %s\n", session.ID)
			fmt.Printf("  Subjects: %s\n", strings.Join(session.EmployeeIDs, ", "))
			fmt.Printf("  Lease:    %s\n", formatExpiry(session.LeaseExpiresAt))
		}
		return nil
	},
}

func init() {
	sessionStartCmd.Flags().StringP("location", "l", "", "where the session takes place")
	sessionStartCmd.Flags().String("ttl", "", "lease duration (default: server default, max 12h)")
}
