// Package scanner walks the configured scan targets and produces a sized,
// categorized inventory of deletion candidates.
package scanner

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/fsutil"
	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
)

// markerSearchDepth bounds how deep marker searches descend below each
// project root. Deeper venvs exist but are rare and not worth the walk.
const markerSearchDepth = 6

// externalMinBytes is the reporting floor for tool-managed targets
// (Docker, Homebrew); below this they are not worth surfacing.
const externalMinBytes = 100 * 1024 * 1024

// maxWarnings caps the warning list so a badly broken tree cannot balloon
// the inventory.
const maxWarnings = 500

// neverDescend are directory names a marker search never enters. They are
// either huge, self-similar, or owned by other targets.
var neverDescend = map[string]bool{
	".git":         true,
	".svn":         true,
	"node_modules": true,
	".Trash":       true,
	"Library":      true,
}

// RunTool executes an external command and returns its combined output.
// Injectable so tests never shell out.
type RunTool func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Scanner discovers and measures cleanup candidates per the settings'
// target table. Discovery is sequential; size measurement fans out to a
// bounded worker pool and is fully collected before the scan returns.
type Scanner struct {
	settings config.Settings
	runTool  RunTool

	// OnTarget, when set, is called before each target group is scanned.
	OnTarget func(description string)

	mu       sync.Mutex
	warnings []string
}

// New creates a scanner for the given settings.
func New(settings config.Settings) *Scanner {
	return &Scanner{settings: settings, runTool: defaultRunTool}
}

// candidate is a discovered path awaiting measurement.
type candidate struct {
	item     inventory.Item
	measured bool
	isFile   bool
}

// Scan walks every enabled target and returns the resulting inventory.
// Individual root failures degrade to warnings; only context cancellation
// aborts the scan.
func (s *Scanner) Scan(ctx context.Context) (*inventory.Inventory, error) {
	s.mu.Lock()
	s.warnings = nil
	s.mu.Unlock()

	var cands []candidate
	seen := make(map[string]bool)

	for _, target := range s.settings.Targets() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.OnTarget != nil {
			s.OnTarget(target.Description)
		}
		for _, c := range s.discover(ctx, target) {
			key := filepath.Clean(c.item.Path)
			if seen[key] {
				continue
			}
			seen[key] = true
			cands = append(cands, c)
		}
	}

	items, err := s.measure(ctx, cands)
	if err != nil {
		return nil, err
	}

	var kept []inventory.Item
	for _, it := range items {
		if it.SizeBytes < s.minSizeFor(it.Category) {
			continue
		}
		kept = append(kept, it)
	}

	return inventory.New(newScanID(), kept, s.Warnings()), nil
}

// minSizeFor returns the inventory floor for a category. Tool-managed
// categories keep their own higher floor.
func (s *Scanner) minSizeFor(cat inventory.Category) int64 {
	if cat == inventory.CategoryDocker || cat == inventory.CategoryBrew {
		if externalMinBytes > s.settings.MinSizeBytes {
			return externalMinBytes
		}
	}
	return s.settings.MinSizeBytes
}

// measure computes sizes for all unmeasured candidates using a bounded
// worker pool. Results are fully collected before returning; the cleaner
// never runs concurrently with measurement.
func (s *Scanner) measure(ctx context.Context, cands []candidate) ([]inventory.Item, error) {
	items := make([]inventory.Item, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Concurrency)
	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			it := c.item
			if !c.measured {
				if c.isFile {
					info, err := os.Lstat(it.Path)
					if err != nil {
						// Vanished between discovery and measurement.
						return nil
					}
					it.SizeBytes = info.Size()
				} else {
					size, partial := s.dirSize(gctx, it.Path)
					it.SizeBytes = size
					it.Partial = partial
				}
			}
			items[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Drop slots left empty by vanished paths.
	var out []inventory.Item
	for _, it := range items {
		if it.Path != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// ─── Discovery ───────────────────────────────────────────────────────────────

func (s *Scanner) discover(ctx context.Context, t config.Target) []candidate {
	switch t.Kind {
	case config.KindSubdirs:
		return s.discoverEntries(t, true)
	case config.KindEntries:
		return s.discoverEntries(t, false)
	case config.KindWholeDir:
		return s.discoverWholeDirs(t)
	case config.KindMarkerSearch:
		return s.discoverByMarker(t)
	case config.KindExternal:
		return s.discoverExternal(ctx, t)
	}
	return nil
}

// discoverEntries lists each root's immediate entries. With dirsOnly set,
// plain files are ignored (the caches/logs style of target); otherwise
// files and directories both qualify (trash, downloads).
func (s *Scanner) discoverEntries(t config.Target, dirsOnly bool) []candidate {
	var out []candidate
	cutoff := time.Time{}
	if t.MinAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -t.MinAgeDays)
	}

	for _, root := range t.Roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if !os.IsNotExist(err) {
				s.addWarning(t.Category.String() + ": cannot read " + root + ": " + err.Error())
			}
			continue
		}
		for _, e := range entries {
			if e.Type()&fs.ModeSymlink != 0 {
				continue
			}
			if dirsOnly && !e.IsDir() {
				continue
			}
			if !cutoff.IsZero() {
				info, err := e.Info()
				if err != nil || info.ModTime().After(cutoff) {
					continue
				}
			}
			path := filepath.Join(root, e.Name())
			desc := t.Description + " (" + e.Name() + ")"
			out = append(out, candidate{
				item:   inventory.NewItem(path, t.Category, 0, desc),
				isFile: !e.IsDir(),
			})
		}
	}
	return out
}

func (s *Scanner) discoverWholeDirs(t config.Target) []candidate {
	var out []candidate
	for _, root := range t.Roots {
		info, err := os.Stat(root)
		if err != nil {
			if !os.IsNotExist(err) {
				s.addWarning(t.Category.String() + ": cannot stat " + root + ": " + err.Error())
			}
			continue
		}
		if !info.IsDir() {
			continue
		}
		out = append(out, candidate{item: inventory.NewItem(root, t.Category, 0, t.Description)})
	}
	return out
}

// discoverByMarker searches project roots for directories whose basename
// matches one of the target names, validated by marker files. Matched
// directories are not descended into, and symlinked directories are never
// followed, so traversal always terminates.
func (s *Scanner) discoverByMarker(t config.Target) []candidate {
	names := make(map[string]bool, len(t.Names))
	for _, n := range t.Names {
		names[n] = true
	}

	var out []candidate
	for _, root := range t.Roots {
		root := filepath.Clean(root)
		if _, err := os.Stat(root); err != nil {
			continue
		}
		baseDepth := strings.Count(root, string(filepath.Separator))

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.addWarning(t.Category.String() + ": " + err.Error())
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if names[name] {
				if s.markerMatches(t, path) {
					desc := t.Description + " in " + filepath.Base(filepath.Dir(path))
					out = append(out, candidate{item: inventory.NewItem(path, t.Category, 0, desc)})
				}
				return filepath.SkipDir
			}
			if path != root && (neverDescend[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if strings.Count(path, string(filepath.Separator))-baseDepth >= markerSearchDepth {
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil {
			s.addWarning(t.Category.String() + ": walk " + root + ": " + err.Error())
		}
	}
	return out
}

func (s *Scanner) markerMatches(t config.Target, dir string) bool {
	if t.MarkerInside != "" {
		if _, err := os.Stat(filepath.Join(dir, t.MarkerInside)); err != nil {
			return false
		}
	}
	if t.MarkerSibling != "" {
		if _, err := os.Stat(filepath.Join(filepath.Dir(dir), t.MarkerSibling)); err != nil {
			return false
		}
	}
	return true
}

// discoverExternal sizes tool-managed targets. Docker usage comes from
// `docker system df`; Homebrew from the cache directory itself. A missing
// tool contributes nothing.
func (s *Scanner) discoverExternal(ctx context.Context, t config.Target) []candidate {
	switch t.Tool {
	case "docker":
		size, ok := s.dockerUsage(ctx)
		if !ok {
			return nil
		}
		c := candidate{item: inventory.NewItem(t.Roots[0], t.Category, size, t.Description), measured: true}
		return []candidate{c}
	case "brew":
		for _, root := range t.Roots {
			if info, err := os.Stat(root); err == nil && info.IsDir() {
				return []candidate{{item: inventory.NewItem(root, t.Category, 0, t.Description)}}
			}
		}
	}
	return nil
}

func (s *Scanner) dockerUsage(ctx context.Context) (int64, bool) {
	toolCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := s.runTool(toolCtx, "docker", "system", "df", "--format", "{{.Size}}")
	if err != nil {
		return 0, false
	}
	total := fsutil.SumToolSizes(string(out))
	return total, total > 0
}

// Warnings returns the warnings accumulated by the last scan.
func (s *Scanner) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

func (s *Scanner) addWarning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.warnings) < maxWarnings {
		s.warnings = append(s.warnings, msg)
	}
}

// newScanID tags an inventory so it can never be confused with the output
// of another scan.
func newScanID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().Format("20060102T150405.000000000")
	}
	return hex.EncodeToString(b[:])
}
