// Package inventory defines the data model for cleanup candidates: the
// categorized, sized items a scan discovers and the cleaner consumes.
package inventory

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// Item is one deletion candidate. Once measured it is never mutated; a
// rescan produces new Items rather than updating old ones.
type Item struct {
	Path         string    `json:"path"`
	Category     Category  `json:"-"`
	CategoryID   string    `json:"category"`
	SizeBytes    int64     `json:"size_bytes"`
	Risk         Risk      `json:"-"`
	Description  string    `json:"description,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`

	// Partial marks a best-effort size: one or more subtrees could not be
	// read and contributed zero bytes.
	Partial bool `json:"partial,omitempty"`
}

// NewItem builds an Item with the risk tier derived from the category.
func NewItem(path string, cat Category, size int64, desc string) Item {
	return Item{
		Path:         path,
		Category:     cat,
		CategoryID:   cat.String(),
		SizeBytes:    size,
		Risk:         cat.Risk(),
		Description:  desc,
		DiscoveredAt: time.Now(),
	}
}

// HumanSize returns the item size formatted for display.
func (it Item) HumanSize() string {
	return humanize.IBytes(uint64(it.SizeBytes))
}

// Inventory is the full, ordered result of one scan. It is immutable
// once built; deriving a subset produces a new Inventory.
type Inventory struct {
	ScanID     string
	Warnings   []string
	items      []Item
	totalBytes int64
	countByCat map[Category]int
}

// New builds an Inventory from scanned items. Items are ordered by
// category declaration order, then size descending, then path, so two
// scans of an unchanged filesystem produce identical inventories.
func New(scanID string, items []Item, warnings []string) *Inventory {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SizeBytes != b.SizeBytes {
			return a.SizeBytes > b.SizeBytes
		}
		return a.Path < b.Path
	})

	inv := &Inventory{
		ScanID:     scanID,
		Warnings:   warnings,
		items:      sorted,
		countByCat: make(map[Category]int),
	}
	for _, it := range sorted {
		inv.totalBytes += it.SizeBytes
		inv.countByCat[it.Category]++
	}
	return inv
}

// Items returns a copy of the ordered item list.
func (inv *Inventory) Items() []Item {
	out := make([]Item, len(inv.items))
	copy(out, inv.items)
	return out
}

// Len returns the number of items.
func (inv *Inventory) Len() int { return len(inv.items) }

// TotalBytes returns the summed size of all items.
func (inv *Inventory) TotalBytes() int64 { return inv.totalBytes }

// HumanTotal returns the total size formatted for display.
func (inv *Inventory) HumanTotal() string {
	return humanize.IBytes(uint64(inv.totalBytes))
}

// CountByCategory returns the item count for a category.
func (inv *Inventory) CountByCategory(c Category) int { return inv.countByCat[c] }

// BytesByCategory returns the summed size per category.
func (inv *Inventory) BytesByCategory() map[Category]int64 {
	out := make(map[Category]int64)
	for _, it := range inv.items {
		out[it.Category] += it.SizeBytes
	}
	return out
}

// Filter returns a new Inventory restricted to the given categories.
// A nil or empty filter returns the receiver unchanged.
func (inv *Inventory) Filter(cats []Category) *Inventory {
	if len(cats) == 0 {
		return inv
	}
	keep := make(map[Category]bool, len(cats))
	for _, c := range cats {
		keep[c] = true
	}
	var items []Item
	for _, it := range inv.items {
		if keep[it.Category] {
			items = append(items, it)
		}
	}
	return New(inv.ScanID, items, inv.Warnings)
}
