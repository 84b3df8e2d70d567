package ui

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
)

// ScanSummary prints the per-category totals table for an inventory.
func ScanSummary(inv *inventory.Inventory) {
	bytesByCat := inv.BytesByCategory()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Category", "Items", "Size", "Risk"})
	for _, c := range inventory.Categories() {
		n := inv.CountByCategory(c)
		if n == 0 {
			continue
		}
		t.AppendRow(table.Row{c.Label(), n, FormatSize(bytesByCat[c]), c.Risk().String()})
	}
	t.AppendFooter(table.Row{"Total", inv.Len(), inv.HumanTotal(), ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// DetailedItems prints the largest items, up to limit.
func DetailedItems(inv *inventory.Inventory, limit int) {
	items := inv.Items()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Size", "Category", "Path"})
	for _, it := range items {
		size := it.HumanSize()
		if it.Partial {
			size += "+"
		}
		t.AppendRow(table.Row{size, it.CategoryID, it.Path})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()

	if rest := inv.Len() - len(items); rest > 0 {
		Info("... and %d more items", rest)
	}
}

// VolumeLine prints the free/total space of the volume holding path.
func VolumeLine(path string) {
	usage, err := disk.Usage(path)
	if err != nil {
		return
	}
	Info("volume: %s free of %s (%.0f%% used)",
		FormatSize(int64(usage.Free)), FormatSize(int64(usage.Total)), usage.UsedPercent)
}

// CleanupSummary prints the end-of-run totals.
func CleanupSummary(deleted, skipped, failed int, bytesReclaimed int64, dryRun bool) {
	fmt.Println()
	if dryRun {
		Warn("dry run - nothing was deleted")
		Info("would reclaim %s across %d items (%d skipped)",
			FormatSize(bytesReclaimed), deleted, skipped)
		return
	}
	Success("reclaimed %s", FormatSize(bytesReclaimed))
	Info("%d deleted, %d skipped, %d failed", deleted, skipped, failed)
}
