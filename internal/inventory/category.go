package inventory

import "fmt"

// Category identifies a class of cleanup candidates. The set is closed:
// adding a category means extending this enum and the table below, so an
// unknown category is a construction-time error rather than a runtime one.
type Category int

const (
	CategoryCache Category = iota
	CategoryLogs
	CategoryPythonEnv
	CategoryNodeModules
	CategoryBrew
	CategoryDocker
	CategoryIDE
	CategoryTrash
	CategoryDownloads

	numCategories
)

// Risk classifies how a category may be deleted.
type Risk int

const (
	// RiskSafe items are deleted without prompting.
	RiskSafe Risk = iota
	// RiskConfirm items need an explicit approval before deletion.
	RiskConfirm
)

// categoryInfo is the static per-category table: stable identifier,
// display label, and risk tier. Search roots live in internal/config
// because they depend on the home directory.
var categoryInfo = [numCategories]struct {
	id    string
	label string
	risk  Risk
}{
	CategoryCache:       {"cache", "Application caches", RiskSafe},
	CategoryLogs:        {"logs", "System and application logs", RiskSafe},
	CategoryPythonEnv:   {"python-env", "Python environments", RiskConfirm},
	CategoryNodeModules: {"node-modules", "node_modules directories", RiskConfirm},
	CategoryBrew:        {"brew", "Homebrew download cache", RiskSafe},
	CategoryDocker:      {"docker", "Docker images, containers, and volumes", RiskConfirm},
	CategoryIDE:         {"ide-artifacts", "IDE and build artifacts", RiskSafe},
	CategoryTrash:       {"trash", "Trash folder", RiskSafe},
	CategoryDownloads:   {"downloads", "Old downloads", RiskConfirm},
}

// Categories returns all categories in their declared processing order.
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// String returns the stable identifier used in flags and checkpoint files.
func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryInfo[c].id
}

// Label returns the human-readable display name.
func (c Category) Label() string {
	if c < 0 || c >= numCategories {
		return c.String()
	}
	return categoryInfo[c].label
}

// Risk returns the category's risk tier.
func (c Category) Risk() Risk {
	if c < 0 || c >= numCategories {
		return RiskConfirm
	}
	return categoryInfo[c].risk
}

// ParseCategory resolves a stable identifier back to its Category.
func ParseCategory(id string) (Category, error) {
	for c := Category(0); c < numCategories; c++ {
		if categoryInfo[c].id == id {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", id)
}

// CategoryIDs returns every stable identifier, for flag help text.
func CategoryIDs() []string {
	ids := make([]string, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		ids = append(ids, categoryInfo[c].id)
	}
	return ids
}

func (r Risk) String() string {
	if r == RiskConfirm {
		return "confirm"
	}
	return "safe"
}
