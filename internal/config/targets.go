package config

import (
	"path/filepath"
	"strings"

	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
)

// TargetKind selects how candidates are discovered for a scan target.
type TargetKind int

const (
	// KindSubdirs measures each immediate subdirectory of every root.
	KindSubdirs TargetKind = iota
	// KindEntries measures each immediate entry (file or dir) of every root.
	KindEntries
	// KindWholeDir measures each root itself as a single candidate.
	KindWholeDir
	// KindMarkerSearch walks the project directories looking for
	// directories with matching names, validated by marker files.
	KindMarkerSearch
	// KindExternal sizes and reclaims through an external tool.
	KindExternal
)

// Target describes one scan location for a category.
type Target struct {
	// Category the discovered candidates belong to.
	Category inventory.Category

	// Kind selects the discovery strategy.
	Kind TargetKind

	// Roots are the directories to probe. Missing roots contribute
	// nothing; they never fail the scan.
	Roots []string

	// Names are the directory basenames looked for by KindMarkerSearch.
	Names []string

	// MarkerInside, when set, requires this relative path to exist inside
	// a matched directory (e.g. "bin/python" inside a venv).
	MarkerInside string

	// MarkerSibling, when set, requires this file next to a matched
	// directory (e.g. "package.json" beside node_modules).
	MarkerSibling string

	// Tool is the external binary for KindExternal targets.
	Tool string

	// MinAgeDays skips entries modified more recently than this.
	MinAgeDays int

	// Description labels the candidates for display.
	Description string
}

// Targets returns the scan-target table with all roots resolved against
// the settings. Category order follows the declared enum order; the
// cleaner relies on that for deterministic processing.
func (s Settings) Targets() []Target {
	home := s.HomeDir
	library := filepath.Join(home, "Library")

	all := []Target{
		{
			Category:    inventory.CategoryCache,
			Kind:        KindSubdirs,
			Roots:       []string{filepath.Join(library, "Caches"), filepath.Join(home, ".cache")},
			Description: "Application caches",
		},
		{
			Category:    inventory.CategoryCache,
			Kind:        KindMarkerSearch,
			Roots:       s.ProjectDirs,
			Names:       []string{"__pycache__", ".pytest_cache", ".mypy_cache", ".ruff_cache"},
			Description: "Python tool caches",
		},
		{
			Category:    inventory.CategoryLogs,
			Kind:        KindSubdirs,
			Roots:       []string{filepath.Join(library, "Logs"), "/Library/Logs"},
			Description: "Log directories",
		},
		{
			Category:     inventory.CategoryPythonEnv,
			Kind:         KindMarkerSearch,
			Roots:        append([]string{home}, s.ProjectDirs...),
			Names:        []string{".venv", "venv", ".virtualenv"},
			MarkerInside: filepath.Join("bin", "python"),
			Description:  "Python virtual environments",
		},
		{
			Category:      inventory.CategoryNodeModules,
			Kind:          KindMarkerSearch,
			Roots:         s.ProjectDirs,
			Names:         []string{"node_modules"},
			MarkerSibling: "package.json",
			Description:   "node_modules",
		},
		{
			Category:    inventory.CategoryBrew,
			Kind:        KindExternal,
			Roots:       []string{filepath.Join(library, "Caches", "Homebrew"), "/opt/homebrew/Library/Homebrew/cache"},
			Tool:        "brew",
			Description: "Homebrew download cache",
		},
		{
			Category:    inventory.CategoryDocker,
			Kind:        KindExternal,
			Roots:       []string{"/var/lib/docker"},
			Tool:        "docker",
			Description: "Docker disk usage",
		},
		{
			Category: inventory.CategoryIDE,
			Kind:     KindWholeDir,
			Roots: []string{
				filepath.Join(library, "Developer", "Xcode", "DerivedData"),
				filepath.Join(library, "Developer", "CoreSimulator", "Caches"),
			},
			Description: "Xcode build artifacts",
		},
		{
			Category:    inventory.CategoryTrash,
			Kind:        KindEntries,
			Roots:       []string{filepath.Join(home, ".Trash"), filepath.Join(home, ".local", "share", "Trash", "files")},
			Description: "Trash",
		},
		{
			Category:    inventory.CategoryDownloads,
			Kind:        KindEntries,
			Roots:       []string{filepath.Join(home, "Downloads")},
			MinAgeDays:  s.DownloadsAgeDays,
			Description: "Old downloads",
		},
	}

	var enabled []Target
	for _, t := range all {
		if s.Enabled[t.Category] {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// AllowedRoots returns every configured root for a category. The cleaner
// refuses to delete anything that does not resolve under one of these.
func (s Settings) AllowedRoots(cat inventory.Category) []string {
	var roots []string
	for _, t := range s.Targets() {
		if t.Category == cat {
			roots = append(roots, t.Roots...)
		}
	}
	return roots
}

// UnderRoot reports whether path is root itself or inside it.
func UnderRoot(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
