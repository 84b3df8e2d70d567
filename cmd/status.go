package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/checkpoint"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of any interrupted cleanup",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store := checkpoint.NewStore(settings.StateDir)
	state, err := store.Load()
	switch {
	case errors.Is(err, checkpoint.ErrNotFound):
		ui.Info("no active checkpoint - nothing to resume")
		return nil
	case errors.Is(err, checkpoint.ErrIncompatible):
		ui.Warn("%v", err)
		ui.Info("run 'mm clear-checkpoint' to discard it")
		return nil
	case err != nil:
		return fmt.Errorf("read checkpoint: %w", err)
	}

	counts := state.CountByCode()
	pending := state.PendingCount()

	ui.Divider("Interrupted cleanup")
	ui.Info("session:   %s", state.SessionID)
	if !state.LastCheckpointAt.IsZero() {
		ui.Info("saved:     %s", humanize.Time(state.LastCheckpointAt))
	}
	if len(state.CategoryFilter) > 0 {
		ui.Info("filter:    %s", strings.Join(state.CategoryFilter, ", "))
	}
	ui.Info("processed: %d items, %s reclaimed",
		state.ItemsProcessed, ui.FormatSize(state.BytesReclaimed))
	ui.Info("done %d / skipped %d / failed %d / pending %d",
		counts[checkpoint.StatusDone], counts[checkpoint.StatusSkipped],
		counts[checkpoint.StatusFailed], pending)

	fmt.Println()
	if pending > 0 {
		ui.Info("run 'mm clean' to resume, or 'mm clean --fresh' to start over")
	} else {
		ui.Info("run 'mm clear-checkpoint' to discard this record")
	}
	return nil
}
