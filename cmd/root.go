package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var (
	// Global flags
	debug bool

	// Version info populated from main
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets build-time version information.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "mm",
	Short: "Reclaim disk space with resumable cleanup",
	Long: `MacMole - Reclaim your storage.

Scans caches, logs, build artifacts, and development dependencies,
then cleans them with checkpoint/resume support: an interrupted run
picks up exactly where it stopped.`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Banner(appVersion)
		fmt.Println("Quick start:")
		fmt.Println("  mm scan         Scan for cleanable items")
		fmt.Println("  mm clean        Interactive cleanup")
		fmt.Println("  mm quick        Quick safe cleanup")
		fmt.Println("  mm status       Show checkpoint status")
		fmt.Println()
		fmt.Println("Run 'mm --help' for all commands.")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")

	// Register all subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(quickCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clearCheckpointCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings builds the immutable settings once per invocation.
func loadSettings() (config.Settings, error) {
	s, err := config.Load()
	if err != nil {
		return config.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}
