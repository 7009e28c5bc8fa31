package main

import "github.com/spf13/cobra"

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Manage documentation sessions and their subject leases",
	GroupID: "sessions",
	Long: `A session holds an exclusive lease on every employee it documents.
Start a session before recording progress; renew it before the lease
expires, and finish it when documentation is done.`,
}

func init() {
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionRenewCmd)
	sessionCmd.AddCommand(sessionFinishCmd)
	sessionCmd.AddCommand(sessionSubjectsCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionListCmd)
}
