package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/ui"
	"github.com/spf13/cobra"
)

var draftSaveCmd = &cobra.Command{
	Use:   "save <employee-id> <goal-step-id> <outcome>",
	Short: "Save or replace a draft record",
	Long: `Save a draft observation for a goal step. Outcome is one of:
correct, verbal_prompt, incorrect, not_applicable.

Notes may be left empty while drafting even for verbal_prompt; submit is
where the notes requirement is enforced.

Examples:
  ty draft save emp-7f2 st-b44 correct
  ty draft save emp-7f2 st-b44 verbal_prompt --notes="Needed one reminder" --timer=45`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		notes, _ := cmd.Flags().GetString("notes")
		timer, _ := cmd.Flags().GetInt("timer")

		draft := &model.DraftRecord{
			DocumenterID: actor,
			EmployeeID:   args[0],
			GoalStepID:   args[1],
			Outcome:      model.Outcome(args[2]),
			RecordDate:   date,
			Notes:        notes,
		}
		if cmd.Flags().Changed("timer") {
			if timer < 0 {
				fmt.Fprintln(os.Stderr, "Error: --timer must be non-negative")
				os.Exit(1)
			}
			draft.TimerSeconds = &timer
		}

		saved, err := tallyClient.SaveDraft(context.Background(), draft)
		if err != nil {
			return fmt.Errorf("saving draft: %w", err)
		}

		if jsonOutput {
			printJSON(saved)
		} else {
			fmt.Printf("Draft saved: %s / %s / %s = %s\n",
				saved.EmployeeID, saved.GoalStepID, saved.RecordDate,
				ui.RenderOutcome(string(saved.Outcome)))
		}
		return nil
	},
}

func init() {
	draftSaveCmd.Flags().String("date", "", "record date YYYY-MM-DD (default: today UTC)")
	draftSaveCmd.Flags().StringP("notes", "n", "", "observation notes")
	draftSaveCmd.Flags().Int("timer", 0, "elapsed seconds for timed steps")
}
