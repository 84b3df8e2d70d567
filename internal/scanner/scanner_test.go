package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshaymaurya-felt/macmole/internal/config"
	"github.com/lakshaymaurya-felt/macmole/internal/inventory"
)

var errNoTools = errors.New("no external tools in tests")

// newTestScanner builds a scanner over a throwaway home directory with
// external tools disabled, so every size comes from the manual walk.
func newTestScanner(t *testing.T, enabled ...inventory.Category) (*Scanner, config.Settings) {
	t.Helper()

	home := t.TempDir()
	s := config.Settings{
		HomeDir:          home,
		StateDir:         filepath.Join(home, ".macmole", "state"),
		MinSizeBytes:     100,
		Concurrency:      2,
		DownloadsAgeDays: 30,
		ProjectDirs:      []string{filepath.Join(home, "Projects")},
		Enabled:          make(map[inventory.Category]bool),
	}
	for _, c := range enabled {
		s.Enabled[c] = true
	}

	sc := New(s)
	sc.runTool = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errNoTools
	}
	return sc, s
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestScanFindsCacheSubdirs(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryCache)
	caches := filepath.Join(settings.HomeDir, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "com.example.app", "blob"), 500)
	writeFile(t, filepath.Join(caches, "com.other.app", "blob"), 150)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, inv.Len())

	items := inv.Items()
	assert.Equal(t, filepath.Join(caches, "com.example.app"), items[0].Path, "largest first")
	assert.Equal(t, int64(500), items[0].SizeBytes)
	assert.Equal(t, inventory.CategoryCache, items[0].Category)
}

func TestScanDropsItemsBelowMinSize(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryCache)
	caches := filepath.Join(settings.HomeDir, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "big", "blob"), 500)
	writeFile(t, filepath.Join(caches, "tiny", "blob"), 10)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, filepath.Join(caches, "big"), inv.Items()[0].Path)
}

func TestScanSkipsSymlinkEntries(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryCache)
	caches := filepath.Join(settings.HomeDir, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "real", "blob"), 500)
	elsewhere := filepath.Join(settings.HomeDir, "elsewhere")
	writeFile(t, filepath.Join(elsewhere, "blob"), 500)
	require.NoError(t, os.Symlink(elsewhere, filepath.Join(caches, "linked")))

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, filepath.Join(caches, "real"), inv.Items()[0].Path)
}

func TestScanFindsVenvByMarker(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryPythonEnv)
	projects := settings.ProjectDirs[0]

	// A real venv has bin/python inside.
	writeFile(t, filepath.Join(projects, "app", ".venv", "bin", "python"), 200)
	writeFile(t, filepath.Join(projects, "app", ".venv", "lib", "mod.py"), 300)
	// A directory merely named venv does not qualify.
	writeFile(t, filepath.Join(projects, "decoy", "venv", "notes.txt"), 500)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, filepath.Join(projects, "app", ".venv"), inv.Items()[0].Path)
	assert.Equal(t, int64(500), inv.Items()[0].SizeBytes)
	assert.Equal(t, inventory.RiskConfirm, inv.Items()[0].Risk)
}

func TestScanFindsNodeModulesBySibling(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryNodeModules)
	projects := settings.ProjectDirs[0]

	writeFile(t, filepath.Join(projects, "web", "node_modules", "left-pad", "index.js"), 400)
	writeFile(t, filepath.Join(projects, "web", "package.json"), 20)
	// node_modules without a package.json beside it is not a project.
	writeFile(t, filepath.Join(projects, "stray", "node_modules", "junk"), 400)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, filepath.Join(projects, "web", "node_modules"), inv.Items()[0].Path)
}

func TestScanDownloadsAgeCutoff(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryDownloads)
	downloads := filepath.Join(settings.HomeDir, "Downloads")

	oldFile := filepath.Join(downloads, "old.iso")
	writeFile(t, oldFile, 500)
	stale := time.Now().AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(oldFile, stale, stale))

	writeFile(t, filepath.Join(downloads, "recent.pdf"), 500)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, oldFile, inv.Items()[0].Path)
}

func TestScanIsDeterministic(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryCache, inventory.CategoryTrash)
	caches := filepath.Join(settings.HomeDir, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "a", "blob"), 300)
	writeFile(t, filepath.Join(caches, "b", "blob"), 300)
	writeFile(t, filepath.Join(settings.HomeDir, ".Trash", "junk"), 200)

	first, err := sc.Scan(context.Background())
	require.NoError(t, err)
	second, err := sc.Scan(context.Background())
	require.NoError(t, err)

	var p1, p2 []string
	for _, it := range first.Items() {
		p1 = append(p1, it.Path)
	}
	for _, it := range second.Items() {
		p2 = append(p2, it.Path)
	}
	assert.Equal(t, p1, p2)
	assert.Equal(t, first.TotalBytes(), second.TotalBytes())
}

func TestScanMissingRootsContributeNothing(t *testing.T) {
	t.Parallel()

	sc, _ := newTestScanner(t,
		inventory.CategoryCache, inventory.CategoryLogs, inventory.CategoryTrash)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
	assert.Empty(t, inv.Warnings, "absent roots are expected, not warned about")
}

func TestScanExternalToolUnavailable(t *testing.T) {
	t.Parallel()

	// runTool always errors, so the docker target must contribute nothing
	// rather than failing the scan.
	sc, _ := newTestScanner(t, inventory.CategoryDocker)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Len())
}

func TestScanDockerUsesToolOutput(t *testing.T) {
	t.Parallel()

	sc, _ := newTestScanner(t, inventory.CategoryDocker)
	sc.runTool = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name == "docker" {
			return []byte("1.5GB\n230MB\n0B\n0B\n"), nil
		}
		return nil, errNoTools
	}

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	item := inv.Items()[0]
	assert.Equal(t, inventory.CategoryDocker, item.Category)
	assert.Equal(t, int64(1.5*(1<<30))+230<<20, item.SizeBytes)
}

func TestScanHonorsCancellation(t *testing.T) {
	t.Parallel()

	sc, _ := newTestScanner(t, inventory.CategoryCache)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sc.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDuFastPathParsesKilobytes(t *testing.T) {
	t.Parallel()

	sc, settings := newTestScanner(t, inventory.CategoryCache)
	sc.runTool = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name == "du" {
			return []byte("2048\t" + args[len(args)-1] + "\n"), nil
		}
		return nil, errNoTools
	}
	caches := filepath.Join(settings.HomeDir, "Library", "Caches")
	writeFile(t, filepath.Join(caches, "app", "blob"), 1)

	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, int64(2048*1024), inv.Items()[0].SizeBytes)
}
