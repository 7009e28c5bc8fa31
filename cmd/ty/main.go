package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/alfredjeanlab/tally/internal/client"
	"github.com/alfredjeanlab/tally/internal/ui"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	actor      string

	tallyClient client.TallyClient
)

func defaultActor() string {
	if cfg := loadFileConfig(); cfg.Actor != "" {
		return cfg.Actor
	}
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultServer() string {
	if s := os.Getenv("TALLY_SERVER"); s != "" {
		return s
	}
	if cfg := loadFileConfig(); cfg.Server != "" {
		return cfg.Server
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if s := os.Getenv("TALLY_TOKEN"); s != "" {
		return s
	}
	return loadFileConfig().Token
}

var rootCmd = &cobra.Command{
	Use:   "ty <command>",
	Short: "CLI client for the Tally session and progress service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		tallyClient = client.NewHTTPClient(serverURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if tallyClient != nil {
			tallyClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "tally server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authenticated servers")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "documenter name recorded on operations")

	rootCmd.AddGroup(
		&cobra.Group{ID: "sessions", Title: "Sessions:"},
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "goals", Title: "Goals:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Sessions
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(locksCmd)

	// Records
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(recordsCmd)

	// Goals
	rootCmd.AddCommand(goalCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
