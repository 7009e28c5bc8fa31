package main

import "github.com/spf13/cobra"

var goalCmd = &cobra.Command{
	Use:     "goal",
	Short:   "Manage development goals and view mastery progress",
	GroupID: "goals",
}

func init() {
	goalCmd.AddCommand(goalCreateCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalArchiveCmd)
}
