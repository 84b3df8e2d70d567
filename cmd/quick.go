package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/checkpoint"
	"github.com/lakshaymaurya-felt/macmole/internal/cleaner"
	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
	"github.com/lakshaymaurya-felt/macmole/internal/scanner"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var quickDryRun bool

var quickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Quick cleanup of safe-tier caches and logs",
	Long: `Cleans caches and logs only, without prompts. These are the safe-tier
categories; applications rebuild them as needed. Runs without touching
the checkpoint, so an interrupted 'mm clean' session stays resumable.`,
	RunE: runQuick,
}

func init() {
	quickCmd.Flags().BoolVar(&quickDryRun, "dry-run", false, "Show what would be deleted without deleting")
}

func runQuick(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.Banner(appVersion)

	cats := []inventory.Category{inventory.CategoryCache, inventory.CategoryLogs}

	sc := scanner.New(settings)
	inv, err := sc.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if inv.Filter(cats).Len() == 0 {
		ui.Success("nothing sizable to clean")
		return nil
	}

	store := checkpoint.NewStore(settings.StateDir)
	events := make(chan cleaner.Event, 64)
	opts := cleaner.Options{
		DryRun:      quickDryRun,
		AutoConfirm: true,
		Transient:   true,
		Categories:  cats,
		Events:      events,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			printEvent(ev)
		}
	}()

	c := cleaner.New(settings, store, opts)
	res, runErr := c.Run(ctx, inv, false)
	close(events)
	<-done

	switch {
	case errors.Is(runErr, cleaner.ErrInterrupted):
		ui.Warn("interrupted - progress saved")
		os.Exit(130)
	case runErr != nil:
		return runErr
	}

	ui.CleanupSummary(res.Deleted, res.Skipped, res.Failed, res.BytesReclaimed, res.DryRun)
	return nil
}
