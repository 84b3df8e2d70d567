package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/macmole/internal/checkpoint"
	"github.com/lakshaymaurya-felt/macmole/internal/cleaner"
	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
	"github.com/lakshaymaurya-felt/macmole/internal/scanner"
	"github.com/lakshaymaurya-felt/macmole/internal/ui"
)

var (
	cleanDryRun     bool
	cleanFresh      bool
	cleanResume     bool
	cleanYes        bool
	cleanCategories []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean scanned items with checkpoint/resume",
	Long: `Scans, then deletes cleanable items. Progress is checkpointed so an
interrupted run resumes where it stopped. Confirm-tier items (virtual
environments, node_modules, Docker data, old downloads) are prompted
for individually unless --yes is given.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Show what would be deleted without deleting")
	cleanCmd.Flags().BoolVar(&cleanFresh, "fresh", false, "Discard any prior checkpoint and start over")
	cleanCmd.Flags().BoolVar(&cleanResume, "resume", true, "Resume a prior interrupted run if one exists")
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "Delete confirm-tier items without prompting")
	cleanCmd.Flags().StringSliceVarP(&cleanCategories, "category", "c", nil,
		"Restrict to categories (repeatable): "+strings.Join(inventory.CategoryIDs(), ", "))
	cleanCmd.MarkFlagsMutuallyExclusive("fresh", "resume")
}

func runClean(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	cats, err := parseCategories(cleanCategories)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.Banner(appVersion)

	sc := scanner.New(settings)
	if debug {
		sc.OnTarget = func(desc string) { ui.Info("scanning %s...", desc) }
	}
	inv, err := sc.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	filtered := inv.Filter(cats)
	if filtered.Len() == 0 {
		ui.Success("nothing sizable to clean")
		return nil
	}

	ui.ScanSummary(filtered)
	fmt.Println()

	store := checkpoint.NewStore(settings.StateDir)
	opts := cleaner.Options{
		DryRun:      cleanDryRun,
		AutoConfirm: cleanYes,
		Categories:  cats,
	}

	interactive := ui.IsInteractive()
	promptMode := interactive && !cleanYes && !cleanDryRun

	var res *cleaner.Result
	var runErr error
	switch {
	case promptMode:
		opts.Confirm = promptConfirm(os.Stdin)
		res, runErr = runCleanPlain(ctx, settings, store, opts, inv)
	case interactive:
		res, runErr = runCleanTUI(ctx, settings, store, opts, inv)
	default:
		res, runErr = runCleanPlain(ctx, settings, store, opts, inv)
	}

	switch {
	case errors.Is(runErr, cleaner.ErrInterrupted):
		ui.Warn("interrupted - progress saved")
		if res != nil {
			ui.Info("%d items remaining; run 'mm clean' to resume", res.Remaining)
		}
		os.Exit(130)
	case errors.Is(runErr, cleaner.ErrFilterMismatch):
		ui.Errorln("%v", runErr)
		ui.Info("finish the prior run, or pass --fresh to discard it")
		return runErr
	case errors.Is(runErr, checkpoint.ErrConcurrentRun):
		ui.Errorln("%v", runErr)
		return runErr
	case runErr != nil:
		return runErr
	}

	ui.CleanupSummary(res.Deleted, res.Skipped, res.Failed, res.BytesReclaimed, res.DryRun)
	if res.Failed > 0 && !debug {
		ui.Info("some items failed; run with --debug for details")
	}
	return nil
}

// runCleanPlain runs the cleaner in the foreground, printing one line per
// item as events arrive.
func runCleanPlain(ctx context.Context, settings config.Settings, store *checkpoint.Store, opts cleaner.Options, inv *inventory.Inventory) (*cleaner.Result, error) {
	events := make(chan cleaner.Event, 64)
	opts.Events = events

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			printEvent(ev)
		}
	}()

	c := cleaner.New(settings, store, opts)
	res, err := c.Run(ctx, inv, cleanResume && !cleanFresh)
	close(events)
	<-done
	return res, err
}

// runCleanTUI runs the cleaner in a goroutine behind the progress model.
func runCleanTUI(ctx context.Context, settings config.Settings, store *checkpoint.Store, opts cleaner.Options, inv *inventory.Inventory) (*cleaner.Result, error) {
	events := make(chan cleaner.Event, 64)
	opts.Events = events

	total := inv.Filter(opts.Categories).Len()
	prog := tea.NewProgram(ui.NewCleanModel(events, total), tea.WithContext(ctx))

	c := cleaner.New(settings, store, opts)

	type outcome struct {
		res *cleaner.Result
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		res, err := c.Run(ctx, inv, cleanResume && !cleanFresh)
		close(events)
		resCh <- outcome{res, err}
	}()

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		out := <-resCh
		if out.err != nil {
			return out.res, out.err
		}
		return out.res, err
	}
	out := <-resCh
	return out.res, out.err
}

func printEvent(ev cleaner.Event) {
	switch ev.Action {
	case cleaner.ActionDelete:
		ui.Success("%s %s %s", ui.FormatSize(ev.Bytes), ui.IconArrow, ev.Item.Path)
	case cleaner.ActionDryRun:
		ui.Info("would delete %s (%s)", ev.Item.Path, ui.FormatSize(ev.Bytes))
	case cleaner.ActionVanished:
		ui.Info("already gone: %s", ev.Item.Path)
	case cleaner.ActionSkip:
		ui.Info("skipped %s", ev.Item.Path)
	case cleaner.ActionFail:
		ui.Errorln("failed %s: %s", ev.Item.Path, ev.Reason)
	}
}

// promptConfirm reads a y/N answer per confirm-tier item.
func promptConfirm(in *os.File) cleaner.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(item inventory.Item) bool {
		fmt.Printf("  %s delete %s (%s, %s)? [y/N] ",
			ui.IconDiamond, item.Path, item.HumanSize(), item.Description)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func parseCategories(ids []string) ([]inventory.Category, error) {
	var cats []inventory.Category
	for _, id := range ids {
		c, err := inventory.ParseCategory(id)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}
