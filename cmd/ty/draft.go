package main

import "github.com/spf13/cobra"

var draftCmd = &cobra.Command{
	Use:     "draft",
	Short:   "Manage in-progress draft records",
	GroupID: "records",
	Long: `Drafts are per-documenter scratch records for a goal step on a date.
They are invisible to other documenters and to mastery evaluation until
committed with "ty submit". Saving over the same key replaces the draft.`,
}

func init() {
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftDiscardCmd)
}
