package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/checkpoint"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var clearCheckpointCmd = &cobra.Command{
	Use:   "clear-checkpoint",
	Short: "Discard any saved cleanup checkpoint",
	Long: `Removes the saved checkpoint so the next clean starts from scratch.
Safe to run when no checkpoint exists.`,
	RunE: runClearCheckpoint,
}

func runClearCheckpoint(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store := checkpoint.NewStore(settings.StateDir)
	existed := store.Exists()
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}

	if existed {
		ui.Success("checkpoint cleared")
	} else {
		ui.Info("no checkpoint to clear")
	}
	return nil
}
