package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
	"github.com/lakshaymaurya-felt/macmole/internal/scanner"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var (
	scanAll      bool
	scanDetailed bool
	scanLimit    int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for cleanable items",
	Long: `Scans the configured targets (caches, logs, virtualenvs, node_modules,
build artifacts, trash, old downloads) and reports what could be
reclaimed. Nothing is deleted.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Scan every category, including those disabled in config")
	scanCmd.Flags().BoolVar(&scanDetailed, "detailed", false, "List the largest individual items")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 20, "Max items shown with --detailed")
}

func runScan(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if scanAll {
		for _, c := range inventory.Categories() {
			settings.Enabled[c] = true
		}
	}

	ui.Banner(appVersion)

	sc := scanner.New(settings)
	if debug {
		sc.OnTarget = func(desc string) { ui.Info("scanning %s...", desc) }
	}

	inv, err := sc.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if inv.Len() == 0 {
		ui.Success("nothing sizable to clean")
		ui.VolumeLine(settings.HomeDir)
		return nil
	}

	ui.ScanSummary(inv)
	if scanDetailed {
		fmt.Println()
		ui.DetailedItems(inv, scanLimit)
	}
	ui.VolumeLine(settings.HomeDir)

	if warnings := inv.Warnings; len(warnings) > 0 {
		if debug {
			for _, w := range warnings {
				ui.Warn("%s", w)
			}
		} else {
			ui.Info("%d paths could not be fully scanned (run with --debug for details)", len(warnings))
		}
	}

	fmt.Println()
	ui.Info("run 'mm clean' to remove these items")
	return nil
}
