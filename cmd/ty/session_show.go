package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session, optionally with its notes and event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		withNotes, _ := cmd.Flags().GetBool("notes")
		withEvents, _ := cmd.Flags().GetBool("events")

		session, err := tallyClient.GetSession(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting session %s: %w", id, err)
		}

		if jsonOutput && !withNotes && !withEvents {
			printJSON(session)
			return nil
		}

		if !jsonOutput {
			printSessionTable(session)
		}

		out := map[string]any{"session": session}

		if withNotes {
			notes, err := tallyClient.GetSessionNotes(context.Background(), id)
			if err != nil {
				return fmt.Errorf("getting session notes: %w", err)
			}
			if jsonOutput {
				out["notes"] = notes
			} else if len(notes) > 0 {
				fmt.Println("\nNotes:")
				for _, n := range notes {
					fmt.Printf("  [%s] %s\n", n.EmployeeID, n.Body)
				}
			}
		}

		if withEvents {
			evs, err := tallyClient.GetSessionEvents(context.Background(), id)
			if err != nil {
				return fmt.Errorf("getting session events: %w", err)
			}
			if jsonOutput {
				out["events"] = evs
			} else if len(evs) > 0 {
				fmt.Println("\nEvents:")
				for _, e := range evs {
					fmt.Printf("  [%s] %s by %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Topic, e.Actor)
				}
			}
		}

		if jsonOutput {
			printJSON(out)
		}
		return nil
	},
}

func init() {
	sessionShowCmd.Flags().Bool("notes", false, "include assessment summaries")
	sessionShowCmd.Flags().Bool("events", false, "include the session event log")
}
