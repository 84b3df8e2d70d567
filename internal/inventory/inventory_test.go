package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrdersItems(t *testing.T) {
	t.Parallel()

	items := []Item{
		NewItem("/home/u/Downloads/old.iso", CategoryDownloads, 900, ""),
		NewItem("/home/u/.cache/b", CategoryCache, 100, ""),
		NewItem("/home/u/.cache/a", CategoryCache, 500, ""),
		NewItem("/home/u/.cache/c", CategoryCache, 100, ""),
		NewItem("/home/u/Library/Logs/app", CategoryLogs, 700, ""),
	}

	inv := New("scan-1", items, nil)

	var paths []string
	for _, it := range inv.Items() {
		paths = append(paths, it.Path)
	}
	assert.Equal(t, []string{
		"/home/u/.cache/a",
		"/home/u/.cache/b",
		"/home/u/.cache/c",
		"/home/u/Library/Logs/app",
		"/home/u/Downloads/old.iso",
	}, paths, "category order first, then size descending, then path")
}

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	items := []Item{
		NewItem("/a", CategoryCache, 50, ""),
		NewItem("/b", CategoryCache, 50, ""),
		NewItem("/c", CategoryLogs, 10, ""),
	}
	reversed := []Item{items[2], items[1], items[0]}

	inv1 := New("s", items, nil)
	inv2 := New("s", reversed, nil)
	assert.Equal(t, inv1.Items(), inv2.Items())
}

func TestTotals(t *testing.T) {
	t.Parallel()

	inv := New("s", []Item{
		NewItem("/a", CategoryCache, 100, ""),
		NewItem("/b", CategoryCache, 200, ""),
		NewItem("/c", CategoryTrash, 50, ""),
	}, nil)

	assert.Equal(t, 3, inv.Len())
	assert.Equal(t, int64(350), inv.TotalBytes())
	assert.Equal(t, 2, inv.CountByCategory(CategoryCache))
	assert.Equal(t, 1, inv.CountByCategory(CategoryTrash))
	assert.Equal(t, 0, inv.CountByCategory(CategoryDocker))

	byCat := inv.BytesByCategory()
	assert.Equal(t, int64(300), byCat[CategoryCache])
	assert.Equal(t, int64(50), byCat[CategoryTrash])
}

func TestFilter(t *testing.T) {
	t.Parallel()

	inv := New("s", []Item{
		NewItem("/a", CategoryCache, 100, ""),
		NewItem("/b", CategoryLogs, 200, ""),
		NewItem("/c", CategoryTrash, 50, ""),
	}, []string{"warn"})

	same := inv.Filter(nil)
	assert.Same(t, inv, same, "empty filter returns the receiver")

	sub := inv.Filter([]Category{CategoryLogs})
	assert.Equal(t, 1, sub.Len())
	assert.Equal(t, int64(200), sub.TotalBytes())
	assert.Equal(t, "/b", sub.Items()[0].Path)
	assert.Equal(t, []string{"warn"}, sub.Warnings)

	none := inv.Filter([]Category{CategoryDocker})
	assert.Equal(t, 0, none.Len())
}

func TestItemRiskDerivedFromCategory(t *testing.T) {
	t.Parallel()

	safe := NewItem("/a", CategoryCache, 1, "")
	assert.Equal(t, RiskSafe, safe.Risk)

	confirm := NewItem("/b", CategoryPythonEnv, 1, "")
	assert.Equal(t, RiskConfirm, confirm.Risk)
	assert.Equal(t, "python-env", confirm.CategoryID)
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCategory("registry")
	assert.Error(t, err)
}

func TestCategoryIDsStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"cache", "logs", "python-env", "node-modules", "brew",
		"docker", "ide-artifacts", "trash", "downloads",
	}, CategoryIDs())
}
